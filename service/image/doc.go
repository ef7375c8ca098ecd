// Package image encodes rendered framebuffers to PPM and PNG files via the
// abstract file system.
package image
