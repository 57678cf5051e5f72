package review

// Kind classifies the outcome of a submission.
type Kind int

const (
	KindOK Kind = iota
	KindConfiguration
	KindTransport
	KindRateLimit
	KindStatus
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindRateLimit:
		return "rate_limit"
	case KindStatus:
		return "status"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Format tells the view whether Display is safe HTML or plain text.
type Format int

const (
	FormatText Format = iota
	FormatHTML
)

// Result is the single outcome of one Submit call.
type Result struct {
	Kind    Kind
	Display string
	Format  Format
	// Raw is the unrendered model text; empty unless Kind is KindOK and the
	// response held exactly one text segment.
	Raw string

	Cause      error
	StatusCode int
	Body       string
}

func (r Result) OK() bool {
	return r.Kind == KindOK
}
