// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"fmt"
	"io"
	"sync"
)

// Pool for byte buffers handed out by GetByteBuffer.
var byteBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 4096)
		return &buf
	},
}

// GetByteBuffer retrieves a byte buffer from the pool.
func GetByteBuffer() *[]byte {
	return byteBufferPool.Get().(*[]byte)
}

// PutByteBuffer returns a byte buffer to the pool.
func PutByteBuffer(buf *[]byte) {
	*buf = (*buf)[:0]
	byteBufferPool.Put(buf)
}

// Pool for PDF lexer buffers.
var pdfBufferPool = sync.Pool{
	New: func() interface{} {
		return &buffer{
			buf:         make([]byte, 0, 65536),
			tmp:         make([]byte, 0, 256),
			unread:      make([]token, 0, 16),
			key:         make([]byte, 0, 64),
			allowObjptr: true,
			allowStream: true,
		}
	},
}

// GetPDFBuffer retrieves a lexer buffer from the pool.
func GetPDFBuffer() *buffer {
	return pdfBufferPool.Get().(*buffer)
}

// PutPDFBuffer returns a lexer buffer to the pool after resetting it.
func PutPDFBuffer(b *buffer) {
	b.r = nil
	b.buf = b.buf[:0]
	b.pos = 0
	b.offset = 0
	b.tmp = b.tmp[:0]
	b.unread = b.unread[:0]
	b.allowEOF = false
	b.allowObjptr = true
	b.allowStream = true
	b.eof = false
	b.key = b.key[:0]
	b.useAES = false
	b.useAES256 = false
	b.objptr = objptr{}
	b.readErr = nil
	b.ctxChecker = nil
	b.limits = nil
	pdfBufferPool.Put(b)
}

// ResourceManager provides automatic cleanup of closers opened while
// walking a document (xref recovery scratch files, sub-readers, ...).
type ResourceManager struct {
	resources []io.Closer
	mu        sync.Mutex
}

// NewResourceManager creates a new resource manager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{resources: make([]io.Closer, 0, 8)}
}

// Add registers a resource to be closed later.
func (rm *ResourceManager) Add(resource io.Closer) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources = append(rm.resources, resource)
}

// Close closes all managed resources, collecting any errors.
func (rm *ResourceManager) Close() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var errs []error
	for _, resource := range rm.resources {
		if err := resource.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rm.resources = rm.resources[:0]

	if len(errs) > 0 {
		return fmt.Errorf("resource cleanup errors: %v", errs)
	}
	return nil
}
