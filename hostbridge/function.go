package hostbridge

import (
	"fmt"
	"reflect"
)

type function struct {
	name      string
	fn        reflect.Value
	ArgType   reflect.Type
	ReplyType reflect.Type
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// newFunction checks that fn looks like func(args *A, reply *R) error.
func newFunction(name string, fn any) (*function, error) {
	if name == "" {
		return nil, fmt.Errorf("hostbridge: empty function name")
	}
	val := reflect.ValueOf(fn)
	if !val.IsValid() || val.Kind() != reflect.Func || val.IsNil() {
		return nil, fmt.Errorf("hostbridge: %s must be a func, got %T", name, fn)
	}
	typ := val.Type()
	if typ.NumIn() != 2 || typ.NumOut() != 1 || typ.Out(0) != errorType ||
		typ.In(0).Kind() != reflect.Ptr || typ.In(1).Kind() != reflect.Ptr {
		return nil, fmt.Errorf("hostbridge: %s must have signature func(*Args, *Reply) error, got %s", name, typ)
	}

	return &function{
		name:      name,
		fn:        val,
		ArgType:   typ.In(0).Elem(),
		ReplyType: typ.In(1).Elem(),
	}, nil
}

// call runs the function with the decoded arguments.
func (f *function) call(argv, replyv reflect.Value) error {
	results := f.fn.Call([]reflect.Value{argv, replyv})
	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
