package awaitable

// SocketError is a failure of the underlying socket call.
type SocketError struct {
	Op  string
	Err error
}

func (s *SocketError) Error() string {
	return "socket " + s.Op + ": " + s.Err.Error()
}

func (s *SocketError) Unwrap() error {
	return s.Err
}
