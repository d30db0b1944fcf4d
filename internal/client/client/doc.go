// Package client implements the backend API client used by the sync
// subsystem.
//
// It wires the REST contract of the survey platform: single-file multipart
// uploads (POST /uploads) and answer submission (POST /survey/{id}/answers),
// with a bearer token supplied by an external auth collaborator. It also
// owns local database initialization (sqlite + embedded goose migrations)
// and the Repositories bundle handed to the services layer.
package client
