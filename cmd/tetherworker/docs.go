package main

// General API documentation for swaggo. Run `swag init -g cmd/tetherworker/docs.go` to regenerate docs/.
//
// @title           tetherworker API
// @version         0.1.0
// @description     Inference worker: host health and prompt completion with echo fallback.
//
// @contact.name   tetherworker maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
