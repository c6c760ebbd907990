package tdma

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosSyncBroadcast triggers right after a window's sync message is
// committed to the medium.
var HookPosSyncBroadcast = &HookPos{Name: "SyncBroadcast"}

// HookPosEchoVerified triggers when the gateway observes its own sync
// broadcast echoed back.
var HookPosEchoVerified = &HookPos{Name: "EchoVerified"}

// HookPosTrafficRecv triggers for every message the gateway observes
// during the listen phase.
var HookPosTrafficRecv = &HookPos{Name: "TrafficRecv"}

// HookPosWindowClosed triggers when a window's listen phase terminates.
var HookPosWindowClosed = &HookPos{Name: "WindowClosed"}

// HookCtx is the context that holds all the information about the site
// that a hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable
// object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that
// implement the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
