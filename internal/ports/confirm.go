package ports

// Confirmer is the yes/no gate shown once before any live run.
// An error, or anything short of an explicit yes, means "no": the run
// must abort rather than write without confirmation.
type Confirmer interface {
	ConfirmLive() (bool, error)
}
