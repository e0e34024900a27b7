package templaterepo

import "errors"

// Sentinel errors for template resolution and fetching.
// Callers should use errors.Is to check.
var (
	// ErrMalformedArgument indicates a direct-mode argument that is not "<category>/<name>".
	ErrMalformedArgument = errors.New("malformed argument")
	// ErrInvalidTemplateName indicates a template name that is empty or would escape its destination.
	ErrInvalidTemplateName = errors.New("invalid template name")
	// ErrNoTemplatesAvailable indicates a category whose cached subtree has no template directories.
	ErrNoTemplatesAvailable = errors.New("no templates available")
	// ErrFetchFailed indicates the transport could not retrieve the remote subtree.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrTemplateNotFound indicates the remote repository has no entries under the requested path.
	ErrTemplateNotFound = errors.New("template not found in remote repository")
	// ErrInvalidRemote indicates a remote path that cannot be parsed.
	ErrInvalidRemote = errors.New("invalid remote path")
)
