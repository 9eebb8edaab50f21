package kernel

// Error describes an unrecoverable kernel condition. Errors are declared as
// package-level *Error values since there is no allocator to back errors.New
// and the panic path must be able to render them without allocating.
type Error struct {
	// The module that raised the error.
	Module string

	// The error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
