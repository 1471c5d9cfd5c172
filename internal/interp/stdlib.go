package interp

import (
	"github.com/dana-lang/dana/internal/stdlib"
	"github.com/dana-lang/dana/internal/values"
)

// stdlibCallMethod bridges to internal/stdlib's built-in container/string
// methods; kept as a thin wrapper so call.go's dispatch reads uniformly
// alongside the resource/struct branches.
func stdlibCallMethod(recv values.Value, name string, args []values.Value) (values.Value, bool, error) {
	return stdlib.CallMethod(recv, name, args)
}
