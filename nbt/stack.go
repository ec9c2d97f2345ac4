package nbt

// Frame is an open container.
type Frame struct {
	// Kind is List, Compound, or End for the implicit top level frame.
	Kind Kind

	// If the kind is List then Elem is the element kind, Size is the
	// declared element count, and Count is the number of elements started
	// so far.
	Elem  Kind
	Size  int
	Count int

	// If the kind is Compound (or the top level) then Pending is the kind
	// announced by the last name that has not yet had its value started,
	// and Ended is set once the terminator has been seen.
	Pending Kind
	Ended   bool
}

// Stack tracks the open containers. The bottom frame is the top level and is
// never popped.
type Stack []*Frame

func newStack() *Stack {
	return &Stack{
		&Frame{Kind: End},
	}
}

func (s *Stack) Push(f *Frame) {
	*s = append(*s, f)
}

func (s *Stack) Top() *Frame {
	return (*s)[len(*s)-1]
}

// Depth returns the number of open containers.
func (s *Stack) Depth() int {
	return len(*s) - 1
}

// Pop closes the top container after checking it was fully consumed.
func (s *Stack) Pop(k Kind) (err error) {
	if s.Depth() == 0 {
		return Error.New("no container open")
	}

	top := s.Top()
	if top.Kind != k {
		return Error.New("closing %s but %s is open", k, top.Kind)
	}

	switch top.Kind {
	case List:
		if top.Count != top.Size {
			return Error.New(
				"list size mismatch: size=%d read=%d",
				top.Size,
				top.Count,
			)
		}
	case Compound:
		if !top.Ended {
			return Error.New("compound not terminated")
		}
	}

	*s = (*s)[:len(*s)-1]

	return nil
}

// Name records that a named value of kind k follows in the top container.
func (s *Stack) Name(k Kind) (err error) {
	top := s.Top()

	switch {
	case top.Kind == List:
		return Error.New("named tag inside list")
	case top.Ended:
		return Error.New("compound already terminated")
	case top.Pending != End:
		return Error.New("value of %s not consumed", top.Pending)
	}

	if k == End {
		if top.Kind == End {
			return Error.New("terminator at top level")
		}

		top.Ended = true

		return nil
	}

	top.Pending = k

	return nil
}

// Value records the start of a value of kind k in the top container.
func (s *Stack) Value(k Kind) (err error) {
	top := s.Top()

	if top.Kind == List {
		if top.Count >= top.Size {
			return Error.New("list overrun: size=%d", top.Size)
		}

		if k != top.Elem {
			return Error.New(
				"list element kind mismatch: list=%s value=%s",
				top.Elem,
				k,
			)
		}

		top.Count++

		return nil
	}

	if top.Pending == End {
		return Error.New("%s value without a name", k)
	}

	if k != top.Pending {
		return Error.New(
			"value kind mismatch: named=%s value=%s",
			top.Pending,
			k,
		)
	}

	top.Pending = End

	return nil
}
