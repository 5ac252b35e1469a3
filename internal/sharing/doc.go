// Package sharing is the public face of the network-sharing binding.
//
// A Client forwards every operation to a native.Service, translating
// public enums to native ones on the way in and native statuses to
// *types.BusinessError on the way out. Event subscriptions go through a
// registry.Registry that owns the single native callback.
package sharing
