package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Generation.
	ErrBadConfig        = "E_BAD_CONFIG"
	ErrUnsupportedShape = "E_UNSUPPORTED_SHAPE"
	ErrWorkerBusy       = "E_WORKER_BUSY"
	ErrInternal         = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrBadConfig:        {},
	ErrUnsupportedShape: {},
	ErrWorkerBusy:       {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
