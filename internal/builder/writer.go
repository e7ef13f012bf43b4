package builder

import (
	"context"

	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/registry"
)

// MessageWriter is the interface of the diagnostic writer registered under
// registry.WriterKey.
type MessageWriter interface {
	Write(msg string)
}

// write sends msg through the registered writer. Without one the message
// goes to the context logger.
func write(ctx context.Context, reg *registry.Registry, msg string) {
	if v, ok := reg.Get(registry.WriterKey); ok {
		if w, ok := v.(MessageWriter); ok {
			w.Write(msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Warn(msg, "writer", "missing")
}
