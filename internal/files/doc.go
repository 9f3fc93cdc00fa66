// Package files locates dataset files on disk. The loader takes an
// explicit path; this package answers the "no path configured" case by
// picking the newest file in the data directory that matches the
// configured patterns.
package files
