// Package cache keeps decoded alert segments on disk, zstd compressed, so
// MP3 voice packs are only decoded once.
package cache
