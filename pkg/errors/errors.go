package errors

import "errors"

// ErrOptimisticLock 낙관적 잠금 충돌: 다른 작업이 먼저 레코드를 변경함
var ErrOptimisticLock = errors.New("다른 작업이 먼저 데이터를 변경했습니다. 새로고침 후 다시 시도하세요")
