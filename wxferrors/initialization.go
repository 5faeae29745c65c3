package wxferrors

// Returns an error kind definition. Each kind should only need to be declared once so
// codes and names stay consistent across packages.
func NewErrorKind(name string, code int) *ErrorKind {
	return &ErrorKind{
		name: name,
		code: code,
	}
}

// Returns an error kind that is also matched by IsKind and errors.Is against parent.
func NewErrorSubKind(name string, code int, parent *ErrorKind) *ErrorKind {
	errorKind := NewErrorKind(name, code)
	errorKind.parent = parent
	return errorKind
}

// Error in a request to a remote evaluation service.
var RequestError = NewErrorKind("RequestError", 1000)

// Error in an authentication request. Authentication errors are also request errors.
var AuthenticationError = NewErrorSubKind("AuthenticationError", 1001, RequestError)

// Error while interacting with an evaluation kernel.
var KernelError = NewErrorKind("KernelError", 1002)

// An evaluation completed but raised messages.
var EvaluationError = NewErrorKind("EvaluationError", 1003)

// Error while writing to or reading from a transport (socket, file, pipe).
var TransportError = NewErrorKind("TransportError", 1004)

// Error while parsing input content.
var ParserError = NewErrorKind("ParserError", 1005)

// List of default ErrorKind definitions.
var ErrorKindList = [6]*ErrorKind{
	RequestError,
	AuthenticationError,
	KernelError,
	EvaluationError,
	TransportError,
	ParserError,
}

// Used to make ErrorKindCodeIndex.
func makeDefaultErrorCodeIndex() map[int]*ErrorKind {
	index := make(map[int]*ErrorKind)
	for _, errorKind := range ErrorKindList {
		index[errorKind.code] = errorKind
	}
	return index
}

// Code:*ErrorKind indexing of default kinds.
var ErrorKindCodeIndex = makeDefaultErrorCodeIndex()
