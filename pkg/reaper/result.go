package reaper

// Messages returned to callers. They are part of the public contract.
const (
	MsgDeleted      = "Movie deleted successfully!"
	MsgUnauthorized = "Unauthorized!"
	MsgForbidden    = "Not allowed Server Action!"
	MsgNotFound     = "Movie not found!"
	MsgFailed       = "Failed to delete movie!"
)

// Result is the outcome of a deletion. Exactly one of Success and Error is set.
type Result struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func succeeded() Result { return Result{Success: MsgDeleted} }

func failed(msg string) Result { return Result{Error: msg} }

// resultFor maps a sentinel to its caller-facing result
func resultFor(err error) Result {
	switch err {
	case nil:
		return succeeded()
	case ErrUnauthorized:
		return failed(MsgUnauthorized)
	case ErrForbidden:
		return failed(MsgForbidden)
	case ErrNotFound:
		return failed(MsgNotFound)
	default:
		return failed(MsgFailed)
	}
}

// OK reports whether the deletion completed
func (r Result) OK() bool {
	return r.Error == ""
}

// Err returns the sentinel error matching the result, or nil on success
func (r Result) Err() error {
	switch r.Error {
	case "":
		return nil
	case MsgUnauthorized:
		return ErrUnauthorized
	case MsgForbidden:
		return ErrForbidden
	case MsgNotFound:
		return ErrNotFound
	default:
		return ErrDeleteFailed
	}
}
