// Package scene loads and caches declarative scene definitions. Definitions
// are plain YAML resolved through the abstract file system, so scenes can
// live on local disk, in embedded assets or in object storage.
package scene
