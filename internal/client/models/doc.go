// Package models defines the client-side data model of the offline
// submission queue: queued media items, queued survey submissions, and the
// typed answer payload whose media-bearing fields can hold either a local
// device URI (before upload) or a remote URL (after upload).
package models
