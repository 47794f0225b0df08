// Package audio plays spoken alert segments. It defines the opaque Clip
// handle and the Device abstraction, a Sequencer that plays an ordered list
// of clips strictly back to back, and Device implementations backed by
// oto/v3, portaudio (build tag "portaudio") and a mock for tests.
package audio
