package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/vk/picklerun/internal/binder"
	"github.com/vk/picklerun/internal/ctxlog"
)

// Pending is the sentinel a handler returns to mark a step recognized but
// not implemented yet. The step finishes pending instead of failed.
var Pending = pending{}

type pending struct{}

// Invocation is the outcome of one handler call: the step status, the
// scenario context to carry forward, and the failure when there is one.
type Invocation struct {
	Status   StepStatus
	Scenario map[string]any
	Err      *StepError
}

var (
	scenarioType = reflect.TypeOf(map[string]any(nil))
	stringType   = reflect.TypeOf("")
)

// InvokeStep calls the matched handler with the pattern captures. When the
// handler declares one parameter more than the pattern captures, the
// scenario context is passed as the first argument.
//
// The return value decides the step status: a map[string]any replaces the
// scenario context, nil keeps it, Pending marks the step pending, a non-nil
// error fails it, and anything else fails the step as an invalid return.
// Panics are recovered and reported as exceptions; they never unwind past
// the step.
func InvokeStep(ctx context.Context, match *binder.Match, scenario map[string]any) Invocation {
	def := match.Definition
	if scenario == nil {
		scenario = map[string]any{}
	}

	t := reflect.TypeOf(def.Handler)
	args := make([]reflect.Value, 0, def.Arity)
	offset := 0
	if def.Arity == len(match.Captures)+1 {
		if !scenarioType.AssignableTo(t.In(0)) {
			return Invocation{Status: StatusFailed, Scenario: scenario, Err: &StepError{
				Type:    FailureException,
				Message: fmt.Sprintf("handler parameter 1 is %s, cannot receive the scenario context", t.In(0)),
			}}
		}
		args = append(args, reflect.ValueOf(scenario))
		offset = 1
	}
	for i, capture := range match.Captures {
		if !stringType.AssignableTo(t.In(offset + i)) {
			return Invocation{Status: StatusFailed, Scenario: scenario, Err: &StepError{
				Type:    FailureException,
				Message: fmt.Sprintf("handler parameter %d is %s, cannot receive a string capture", offset+i+1, t.In(offset+i)),
			}}
		}
		args = append(args, reflect.ValueOf(capture))
	}

	out, stepErr := call(reflect.ValueOf(def.Handler), args)
	if stepErr != nil {
		ctxlog.FromContext(ctx).Debug("Handler panicked", "pattern", def.Source, "error", stepErr.Message)
		return Invocation{Status: StatusFailed, Scenario: scenario, Err: stepErr}
	}

	switch t.NumOut() {
	case 0:
		return Invocation{Status: StatusPassed, Scenario: scenario}
	case 1:
		return classifyReturn(out[0], scenario)
	default:
		if !out[1].IsNil() {
			return Invocation{Status: StatusFailed, Scenario: scenario, Err: raisedError(out[1].Interface().(error))}
		}
		return classifyReturn(out[0], scenario)
	}
}

// call invokes the handler and converts a panic into a step error so one
// broken step cannot take down the run.
func call(fn reflect.Value, args []reflect.Value) (out []reflect.Value, stepErr *StepError) {
	defer func() {
		if r := recover(); r != nil {
			stepErr = panicError(r)
		}
	}()
	return fn.Call(args), nil
}

// classifyReturn maps a handler's first return value onto the step
// contract. The value kinds are checked before unwrapping so typed nil
// maps and nil errors count as "no result".
func classifyReturn(v reflect.Value, scenario map[string]any) Invocation {
	if isNilValue(v) {
		return Invocation{Status: StatusPassed, Scenario: scenario}
	}
	switch val := v.Interface().(type) {
	case map[string]any:
		return Invocation{Status: StatusPassed, Scenario: val}
	case pending:
		return Invocation{Status: StatusPending, Scenario: scenario}
	case error:
		return Invocation{Status: StatusFailed, Scenario: scenario, Err: raisedError(val)}
	default:
		return Invocation{Status: StatusFailed, Scenario: scenario, Err: &StepError{
			Type:    FailureInvalidReturn,
			Message: fmt.Sprintf("handler returned %T; want map[string]any, nil, executor.Pending, or an error", val),
			Class:   fmt.Sprintf("%T", val),
		}}
	}
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}

// raisedError converts a handler error into a step failure, carrying the
// structured payload when the error provides one.
func raisedError(err error) *StepError {
	return &StepError{
		Type:    FailureException,
		Message: err.Error(),
		Class:   fmt.Sprintf("%T", err),
		Payload: errorPayload(err),
	}
}

func errorPayload(err error) any {
	var carrier PayloadCarrier
	if errors.As(err, &carrier) {
		return carrier.ErrorPayload()
	}
	return nil
}

func panicError(r any) *StepError {
	if err, ok := r.(error); ok {
		return raisedError(err)
	}
	return &StepError{
		Type:    FailureException,
		Message: fmt.Sprint(r),
		Class:   fmt.Sprintf("%T", r),
	}
}
