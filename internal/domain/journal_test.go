package domain

import (
	"reflect"
	"testing"
)

func TestJournal_ParentKeyCache(t *testing.T) {
	j := NewJournal()

	if _, ok := j.ParentKey("deep work"); ok {
		t.Fatal("empty journal should have no cached key")
	}

	j.SetParentKey("deep work", "ABCD1234")

	key, ok := j.ParentKey("deep work")
	if !ok || key != "ABCD1234" {
		t.Errorf("ParentKey = %q, %v; want ABCD1234, true", key, ok)
	}
}

func TestJournal_DoneTitles(t *testing.T) {
	j := NewJournal()

	if j.IsDone("deep work") {
		t.Fatal("empty journal should have no done titles")
	}

	j.MarkDone("deep work")
	j.MarkDone("atomic habits")

	if !j.IsDone("deep work") {
		t.Error("deep work should be done")
	}
	want := []string{"atomic habits", "deep work"}
	if got := j.DoneTitles(); !reflect.DeepEqual(got, want) {
		t.Errorf("DoneTitles() = %v, want %v", got, want)
	}
}

func TestJournal_SentFingerprints(t *testing.T) {
	j := NewJournal()

	if j.HasSent("Deep Work", "ff") {
		t.Fatal("nothing sent yet")
	}

	j.MarkSent("Deep Work", "bb")
	j.MarkSent("Deep Work", "aa")
	j.MarkSent("Deep Work", "aa") // duplicate mark is a no-op

	if !j.HasSent("Deep Work", "aa") || !j.HasSent("Deep Work", "bb") {
		t.Error("marked fingerprints should be reported as sent")
	}
	if j.HasSent("Other Book", "aa") {
		t.Error("sent sets are per literal title")
	}

	want := []string{"aa", "bb"}
	if got := j.SentFingerprints("Deep Work"); !reflect.DeepEqual(got, want) {
		t.Errorf("SentFingerprints() = %v, want %v", got, want)
	}
	if got := j.SentFingerprints("Other Book"); got != nil {
		t.Errorf("SentFingerprints for unknown title = %v, want nil", got)
	}
}

func TestJournal_MergeOverlayWins(t *testing.T) {
	base := NewJournal()
	base.SetParentKey("deep work", "OLD")
	base.SetParentKey("atomic habits", "KEEP")
	base.MarkDone("deep work")
	base.MarkSent("Deep Work", "old-fp")

	overlay := NewJournal()
	overlay.SetParentKey("deep work", "NEW")
	overlay.MarkDone("smart notes")
	overlay.MarkSent("Deep Work", "new-fp")

	base.Merge(overlay)

	if key, _ := base.ParentKey("deep work"); key != "NEW" {
		t.Errorf("overlay key should win, got %q", key)
	}
	if key, _ := base.ParentKey("atomic habits"); key != "KEEP" {
		t.Errorf("untouched key should survive, got %q", key)
	}
	if !base.IsDone("deep work") || !base.IsDone("smart notes") {
		t.Error("done sets should union")
	}
	// Sent lists merge at title granularity: the overlay's list replaces
	// the base's list for that title.
	if base.HasSent("Deep Work", "old-fp") {
		t.Error("overlay sent list should replace base list for the title")
	}
	if !base.HasSent("Deep Work", "new-fp") {
		t.Error("overlay fingerprints should be present")
	}
}

func TestJournal_MergeNil(t *testing.T) {
	j := NewJournal()
	j.Merge(nil) // must not panic
}
