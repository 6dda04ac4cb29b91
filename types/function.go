package types

// Function is a callable an equation can reference by name. The name is
// matched case-insensitively by the registry.
type Function interface {
	Name() string

	// Summary is an informal description for users, like "Calculates
	// the natural logarithm of its argument."
	Summary() string

	// Usage describes how to call the function, like "Call with LN(number)."
	Usage() string

	// ReturnType is the declared return type. Dynamic means the
	// concrete type depends on the arguments of a particular call.
	ReturnType() ValueType

	// ValidateArgTypes checks an ordered list of argument types against
	// the function's signatures and returns the concrete result type,
	// or NoType when arity or types match no signature. Unlike
	// ReturnType it never returns Dynamic.
	ValidateArgTypes(args []ValueType) ValueType

	// Call invokes the function. The arguments must already have passed
	// ValidateArgTypes for the corresponding type list.
	Call(args []Value) (Value, error)
}

// Registry resolves function names for the parser.
type Registry interface {
	// Lookup returns the function registered under the given name,
	// compared case-insensitively, or nil.
	Lookup(name string) Function
}

// Schema declares the types of the attributes a formula may reference.
type Schema map[string]ValueType
