package retry

import "context"

// DoWithResultTyped 是 Retryer.DoWithResult 的泛型包装，省去类型断言。
//
//	text, err := retry.DoWithResultTyped[string](r, ctx, func() (string, error) {
//	    return call(ctx)
//	})
func DoWithResultTyped[T any](r Retryer, ctx context.Context, fn func() (T, error)) (T, error) {
	result, err := r.DoWithResult(ctx, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
