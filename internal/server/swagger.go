package server

//go:generate swag init -g internal/server/server.go -o docs

// @title uivet API
// @version 0.1
// @description Interactive documentation for the uivet audit API surface.
// @contact.name uivet Maintainers
// @contact.url https://github.com/sableview/uivet
// @BasePath /
