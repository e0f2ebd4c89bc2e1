package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           asrprod API
// @version         1.0
// @description     HTTP API for container-backed speech-recognition model serving.
//
// @contact.name   asrprod maintainers
// @contact.url    https://github.com/surajmandalcell/asrpro-sub001
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
