// Package api provides the operator REST API of SafeIndexor
// @title SafeIndexor API
// @version 1.0
// @description Operator API exposing pipeline status, safe status and the reindex controls
// @contact.name API Support
// @contact.url https://github.com/goran-ethernal/SafeIndexor
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api
