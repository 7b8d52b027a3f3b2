// Package hostbridge is an in-process stand-in for the host side of the bridge.
//
// It exposes Go functions to the client the way the desktop host exposes its bound
// functions: Invoke answers through the callback, PostMessage answers later on the message
// stream tagged with the caller's id, and SendMessage pushes unsolicited broadcasts. There
// is no wire format; it exists for tests and the demo binary.
//
//	PostMessage(7, "say_hi", `{"msg":"hi"}`) → worker goroutine → fn(args, reply)
//	                                            → emit {"callback_id":7,"result":reply}
package hostbridge

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"bridge-rpc/codec"
	"bridge-rpc/logger"
	"bridge-rpc/message"
)

// ErrUnknownFunction is reported when a call names a function that is not bound.
var ErrUnknownFunction = errors.New("unknown function")

// Bridge implements channel.Channel on top of bound Go functions.
type Bridge struct {
	codec codec.Codec
	log   *logger.Logger

	mu        sync.RWMutex
	functions map[string]*function
	handlers  []func(string)

	emitMu sync.Mutex     // one message on the stream at a time, like a single signal queue
	wg     sync.WaitGroup // worker goroutines serving PostMessage and Invoke
}

// New returns a bridge with no bound functions.
func New(log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		codec:     codec.GetCodec(codec.CodecTypeJSON),
		log:       log,
		functions: make(map[string]*function),
	}
}

// Bind exposes fn under name. fn must look like func(args *A, reply *R) error; the call
// parameters are decoded into A and R is encoded as the result.
func (b *Bridge) Bind(name string, fn any) error {
	f, err := newFunction(name, fn)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.functions[name] = f
	b.mu.Unlock()

	b.log.Debug().Str("function", name).Msg("function bound")
	return nil
}

// Unbind removes name. Later calls to it answer null.
func (b *Bridge) Unbind(name string) {
	b.mu.Lock()
	delete(b.functions, name)
	b.mu.Unlock()
}

// Invoke runs the function on a worker goroutine and passes the JSON result to callback.
func (b *Bridge) Invoke(method string, params string, callback func(result string)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		result := b.result(method, params)
		if callback != nil {
			callback(result.String())
		}
	}()
}

// PostMessage runs the function on a worker goroutine and emits the response tagged with
// callID on the message stream.
func (b *Bridge) PostMessage(callID int64, method string, params string) error {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		result := b.result(method, params)
		if err := b.emit(message.NewResponse(callID, result)); err != nil {
			b.log.Error().Err(err).Int64("call_id", callID).Msg("reply failed")
		}
	}()
	return nil
}

// OnMessage subscribes handler to the message stream.
func (b *Bridge) OnMessage(handler func(message string)) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Subscribers returns how many handlers listen to the message stream.
func (b *Bridge) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// SendMessage pushes v to the client as a broadcast.
func (b *Bridge) SendMessage(v any) error {
	payload, err := message.NewValue(v)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	return b.emit(message.NewBroadcast(payload))
}

// EmitRaw pushes raw onto the message stream as is.
func (b *Bridge) EmitRaw(raw string) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.RLock()
	handlers := append([]func(string){}, b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(raw)
	}
}

// Close waits for in-flight function calls to finish.
func (b *Bridge) Close() {
	b.wg.Wait()
}

func (b *Bridge) emit(msg *message.Inbound) error {
	raw, err := codec.EncodeInbound(b.codec, msg)
	if err != nil {
		return err
	}
	b.EmitRaw(raw)
	return nil
}

// result runs method and returns its encoded reply. Unknown functions and failing calls
// answer null; the failure is only logged.
func (b *Bridge) result(method string, params string) message.Value {
	result, err := b.call(method, params)
	if err != nil {
		b.log.Warn().Str("function", method).Err(err).Msg("call failed")
		return nil
	}
	return result
}

func (b *Bridge) call(method string, params string) (message.Value, error) {
	b.mu.RLock()
	f, ok := b.functions[method]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, method)
	}

	argv := reflect.New(f.ArgType)
	replyv := reflect.New(f.ReplyType)

	if params != "" {
		if err := b.codec.Decode([]byte(params), argv.Interface()); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
	}

	if err := f.call(argv, replyv); err != nil {
		return nil, err
	}

	reply, err := b.codec.Encode(replyv.Interface())
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return message.Value(reply), nil
}
