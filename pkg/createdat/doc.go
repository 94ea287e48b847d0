// Package createdat determines the recorded creation timestamp of a local media file.
//
// The recorded timestamp is what a photo library would report for the file: the
// embedded metadata when present, otherwise the filesystem mtime. Timestamps found
// in the filename are evidence for reconciliation and are never used here.
package createdat
