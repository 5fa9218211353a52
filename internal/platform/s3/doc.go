// Package s3 is a small client for S3-compatible object storage.
//
// The usage poller archives one JSON snapshot per poll through it. Any
// endpoint speaking the S3 API works; requests use path-style addressing so
// that self-hosted stores (MinIO, Ceph RGW) need no DNS setup.
package s3
