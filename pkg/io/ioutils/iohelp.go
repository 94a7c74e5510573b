// Package ioutils opens and creates data files, transparently handling gzip
// and the "-" stdin/stdout convention.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsStd reports whether path names stdin or stdout.
func IsStd(path string) bool { return path == "" || path == "-" }

// OpenMaybeCompressed opens path, or stdin for "-". Input ending in .gz or
// starting with the gzip magic bytes is decompressed.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if IsStd(path) {
		return maybeGunzip(bufio.NewReader(os.Stdin), func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: closeBoth(zr, f)}, nil
	}
	rc, err := maybeGunzip(bufio.NewReader(f), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func maybeGunzip(br *bufio.Reader, closeFn func() error) (io.ReadCloser, error) {
	if b, err := br.Peek(len(gzipMagic)); err == nil && b[0] == gzipMagic[0] && b[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return closeFn() }}, nil
	}
	return readCloser{Reader: br, closeFn: closeFn}, nil
}

// CreateMaybeCompressed creates path, or writes to stdout for "-". A .gz
// path is gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if IsStd(path) {
		return writeCloser{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: closeBoth(zw, f)}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

// TrimGz drops a trailing .gz so the format extension underneath shows.
func TrimGz(path string) string {
	if filepath.Ext(path) == ".gz" {
		return path[:len(path)-len(".gz")]
	}
	return path
}

func closeBoth(inner, outer io.Closer) func() error {
	return func() error {
		err := inner.Close()
		if cerr := outer.Close(); err == nil {
			err = cerr
		}
		return err
	}
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error {
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	if w.closeFn == nil {
		return nil
	}
	return w.closeFn()
}
