package domain

// ResultKind tags where a facade result came from.
type ResultKind int

const (
	// ResultLive means the data came from the authoritative source.
	ResultLive ResultKind = iota
	// ResultFallback means the source failed and substitute data was served.
	ResultFallback
)

// String returns the string representation.
func (k ResultKind) String() string {
	switch k {
	case ResultLive:
		return "live"
	case ResultFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is the tagged envelope returned to the presentation layer.
// Consumers switch on Kind; a fallback result carries the transport failure
// that triggered it in Err. Data has the same shape either way.
type Result[T any] struct {
	Kind ResultKind
	Data T
	Err  *TransportError
}

// Live wraps data served by the authoritative source.
func Live[T any](data T) Result[T] {
	return Result[T]{Kind: ResultLive, Data: data}
}

// Fallback wraps substitute data served because of cause.
func Fallback[T any](data T, cause *TransportError) Result[T] {
	return Result[T]{Kind: ResultFallback, Data: data, Err: cause}
}

// IsFallback reports whether the data is a substitute.
func (r Result[T]) IsFallback() bool {
	return r.Kind == ResultFallback
}
