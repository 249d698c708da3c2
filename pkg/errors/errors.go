package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 业务错误类别
// Handler 层根据类别统一映射 HTTP 状态码，Service 层通过 Mark 给哨兵错误打标
type Kind int

const (
	// KindUnknown 未分类错误（默认按 500 处理）
	KindUnknown Kind = iota
	// KindNotFound 目标/员工不存在
	KindNotFound
	// KindInvalidArgument 参数非法（金额越界、自我转派、理由为空等）
	KindInvalidArgument
	// KindInvalidState 状态非法（操作非 active 目标、并发二次转派等）
	KindInvalidState
	// KindIncompleteMapping 离职批量转派映射不完整
	KindIncompleteMapping
	// KindPolicyViolation 对不可结转类型请求 add_to_next / redistribute
	KindPolicyViolation
)

// kindError 携带类别的错误包装
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() error { return e.err }

// Mark 给错误打上类别标记，保留 errors.Is 语义
func Mark(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf 提取错误类别；未打标的错误返回 KindUnknown
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}
