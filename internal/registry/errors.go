package registry

import "errors"

// Error classes for registry operations. Call sites wrap these with %w and
// a concrete message; callers branch with errors.Is.
var (
	// ErrNotFound covers unknown tool ids and missing instances.
	ErrNotFound = errors.New("未找到")
	// ErrConflict covers duplicate install paths and duplicate instance ids.
	ErrConflict = errors.New("冲突")
	// ErrPreconditionFailed covers invalid deletes and bad manual input.
	ErrPreconditionFailed = errors.New("前置条件不满足")
	// ErrProbeFailure covers command failures and unusable version output.
	ErrProbeFailure = errors.New("探测失败")
	// ErrBackendUnavailable covers a missing WSL capability.
	ErrBackendUnavailable = errors.New("执行环境不可用")
)
