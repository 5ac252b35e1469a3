// Package adapter converts between the public sharing vocabulary
// (sharingd/pkg/types) and the native service vocabulary
// (sharingd/internal/native), and turns native status codes into
// *types.BusinessError values.
//
// Public to native is total. Native to public is partial: the service can be
// upgraded independently of this binding, so an unknown native value is
// reported as an *UnmappedValueError rather than silently coerced.
package adapter
