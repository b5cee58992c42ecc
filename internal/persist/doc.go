// Package persist saves the audience selection under one fixed key and tells
// every observer when it changes.
//
// A Store writes through an injected Backend. Backends behave like shared
// browser storage: a write is reported to watchers in other execution
// contexts but never to the context that made it. Store therefore publishes
// on an in-process bus after every Save, and both that bus and the backend's
// cross-context Watch funnel into the same re-read-and-notify step.
//
// MemorySpace hands out in-process contexts for tests and the "memory"
// backend. SQLiteBackend keeps the selection durable and shares it between
// reach processes; it detects foreign writes through PRAGMA data_version,
// prompted by fsnotify events on the database directory with a poll
// fallback. WriterLock keeps a single writer across processes.
package persist
