// Package session coordinates access to per-conversation state. The Manager
// serializes turns for the same session (in-process, and across replicas via
// an optional distributed locker) and Apply folds a turn's decisions back
// into the session snapshot; the engine itself never mutates anything.
package session
