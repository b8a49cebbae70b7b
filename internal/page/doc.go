// Package page holds the in-memory model of a guide page: the front-matter
// title plus an ordered tree of blocks. Values are built once by the loader
// and treated as read-only by everything downstream.
package page
