package main

// General API documentation for swaggo. Run `swag init -g cmd/sharingd/docs.go`
// to generate the spec served by builds tagged swagger.
//
// @title           sharingd API
// @version         1.0
// @description     HTTP API over the network sharing binding: status, start/stop and event streaming.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
