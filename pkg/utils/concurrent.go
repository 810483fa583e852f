package utils

import (
	"fmt"
	"runtime/debug"
)

// SafelyRun converts a panic in function into an error carrying the stack.
func SafelyRun(function func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w\n%s", e, string(debug.Stack()))
			} else {
				err = fmt.Errorf("panic: %v\n%s", r, string(debug.Stack()))
			}
		}
	}()

	function()
	return nil
}

func SafelyGo(function func(), handleError func(error)) {
	go func() {
		if err := SafelyRun(function); err != nil {
			handleError(err)
		}
	}()
}
