// Package session persists conversation threads and messages in SQLite.
//
// Each chat request belongs to a thread. Threads are created lazily: a blank
// thread id mints a new one, and client-supplied ids are registered on first
// use. Messages record the role, the text, and for assistant replies the
// agent that produced them, so a transcript shows which part of the system
// answered.
//
// The store applies WAL journaling, enforces foreign keys, and retries busy
// errors with a short backoff, matching the other SQLite-backed stores.
package session
