package tree

import (
	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/pathaddr"
)

var (
	ErrMalformedPath        = pathaddr.ErrMalformedPath
	ErrPathEscapesRoot      = errors.PathError("path escapes output root").Build()
	ErrNodeNotFound         = errors.NewError(errors.CategoryNotFound, "node not found").Build()
	ErrCycle                = errors.TreeError("reparenting would create a cycle").Build()
	ErrPathCollision        = errors.TreeError("path collides with sibling").Build()
	ErrForeignNode          = errors.TreeError("node belongs to another tree").Build()
	ErrRootExists           = errors.TreeError("tree already has a root").Build()
	ErrUnsupportedOperation = errors.NewError(errors.CategoryRender, "unsupported operation").Build()
)
