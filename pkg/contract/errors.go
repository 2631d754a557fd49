package contract

import "errors"

// 执行器/配置相关最小错误分类。
var (
	// ErrLengthInvalid: 序列长度非法（N<=0 或为负）。
	ErrLengthInvalid = errors.New("length invalid")
	// ErrChunkInvalid: 块大小非法（<=0）。
	ErrChunkInvalid = errors.New("chunk size invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵，例如工作者内 panic）。
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrVerifyMismatch: 结果校验失败（存在 C[i] != A[i]+B[i]）。
	ErrVerifyMismatch = errors.New("verify mismatch")
)
