package application

import (
	"testing"

	"zotsync/internal/ports"
)

func TestExtractCreatedKey(t *testing.T) {
	tests := []struct {
		name    string
		res     *ports.CreateResult
		wantKey string
		wantOK  bool
	}{
		{
			name:   "nil response",
			res:    nil,
			wantOK: false,
		},
		{
			name:   "empty response",
			res:    &ports.CreateResult{StatusCode: 200},
			wantOK: false,
		},
		{
			name: "successful map",
			res: &ports.CreateResult{
				Successful: map[string]string{"0": "KEY0"},
			},
			wantKey: "KEY0",
			wantOK:  true,
		},
		{
			name: "successful map takes lowest index",
			res: &ports.CreateResult{
				Successful: map[string]string{"1": "KEY1", "0": "KEY0"},
			},
			wantKey: "KEY0",
			wantOK:  true,
		},
		{
			name: "successful map sorts indexes numerically",
			res: &ports.CreateResult{
				Successful: map[string]string{"10": "KEY10", "2": "KEY2"},
			},
			wantKey: "KEY2",
			wantOK:  true,
		},
		{
			name: "successful map with empty value falls through to records",
			res: &ports.CreateResult{
				Successful: map[string]string{"0": ""},
				Records:    []ports.RemoteRecord{{Key: "RECKEY"}},
			},
			wantKey: "RECKEY",
			wantOK:  true,
		},
		{
			name: "first record",
			res: &ports.CreateResult{
				Records: []ports.RemoteRecord{{Key: "RECKEY"}, {Key: "OTHER"}},
			},
			wantKey: "RECKEY",
			wantOK:  true,
		},
		{
			name: "location header",
			res: &ports.CreateResult{
				Location: "https://api.example.org/users/1/items/LOCKEY",
			},
			wantKey: "LOCKEY",
			wantOK:  true,
		},
		{
			name: "location header with trailing slash",
			res: &ports.CreateResult{
				Location: "https://api.example.org/users/1/items/LOCKEY/",
			},
			wantKey: "LOCKEY",
			wantOK:  true,
		},
		{
			name: "location header without items segment",
			res: &ports.CreateResult{
				Location: "https://api.example.org/somewhere/else",
			},
			wantOK: false,
		},
		{
			name: "successful map wins over records and location",
			res: &ports.CreateResult{
				Successful: map[string]string{"0": "MAPKEY"},
				Records:    []ports.RemoteRecord{{Key: "RECKEY"}},
				Location:   "https://api.example.org/users/1/items/LOCKEY",
			},
			wantKey: "MAPKEY",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := extractCreatedKey(tt.res)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}
