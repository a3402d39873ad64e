package queue

import "reflect"

// isAbsent reports whether v is the Go form of a missing value: a nil
// pointer, interface, func, chan or unsafe.Pointer. Nil maps and slices are
// usable empty values and are not considered absent.
func isAbsent[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
