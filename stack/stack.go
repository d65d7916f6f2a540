package stack

// Interface is the method set shared by Stack and Locked.
type Interface[T any] interface {
	// Push puts val at the top of the stack.
	Push(val T)

	// Pop removes and returns the value at the top of the stack.
	// It returns false if the stack is empty.
	Pop() (val T, ok bool)

	// Empty reports whether the stack held no value at some recent instant.
	Empty() bool

	// Len is the number of values in the stack, approximately.
	Len() int

	// Close releases everything the stack holds and returns how much was
	// released. It must not run concurrently with any other method.
	Close() int
}

var (
	_ Interface[int] = (*Stack[int])(nil)
	_ Interface[int] = (*Locked[int])(nil)
)

// Stats is a snapshot of a Stack's node accounting.
type Stats struct {
	Allocated int // nodes taken from the arena since the last Close
	Live      int // nodes on the top chain
	Free      int // nodes on the trash chain or in flight
}
