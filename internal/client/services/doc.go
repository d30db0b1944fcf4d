// Package services contains the orchestration layer of the offline sync
// client: the sync engine that drains the queue (upload media, rewrite
// payloads, post submissions) and the trigger that runs it on connectivity
// transitions and at startup.
package services
