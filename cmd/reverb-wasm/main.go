//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-reverb/reverb"
)

var (
	engine     *reverb.Engine
	controls   *reverb.Controls
	controller *reverb.Controller
	ioBuffer   []float32 // interleaved stereo, processed in place
	maxFrames  int
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmGetParam", js.FuncOf(wasmGetParam))
	js.Global().Set("wasmGetInputPointer", js.FuncOf(wasmGetInputPointer))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmReset", js.FuncOf(wasmReset))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM reverb module loaded")
	<-c
}

// wasmInit(sampleRate, blockSize) prepares a stereo engine.
func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return false
	}
	sampleRate := args[0].Float()
	blockSize := 128
	if len(args) > 1 {
		blockSize = args[1].Int()
	}

	e := reverb.NewEngine()
	ctl := reverb.NewControls()
	ctrl := reverb.NewController(ctl, e)
	ctrl.Sync()
	err := e.Prepare(reverb.Config{
		ProcessorConfig: dspcore.ProcessorConfig{SampleRate: sampleRate, BlockSize: blockSize},
		NumChannels:     2,
	})
	if err != nil {
		println("Reverb init failed:", err.Error())
		return false
	}
	engine, controls, controller = e, ctl, ctrl
	maxFrames = blockSize
	ioBuffer = make([]float32, blockSize*2)

	println("Reverb initialized at", int(sampleRate), "Hz, block", blockSize)
	return true
}

func paramID(v js.Value) (reverb.ParamID, bool) {
	if v.Type() == js.TypeString {
		id, err := reverb.ParseParamID(v.String())
		return id, err == nil
	}
	id := reverb.ParamID(v.Int())
	return id, controls.Control(id) != nil
}

// wasmSetParam(id, value) accepts a numeric id or a name such as "ROOMSIZE".
func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || controls == nil {
		return false
	}
	id, ok := paramID(args[0])
	if !ok {
		return false
	}
	controls.Set(id, float32(args[1].Float()))
	return true
}

func wasmGetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || controls == nil {
		return 0
	}
	id, ok := paramID(args[0])
	if !ok {
		return 0
	}
	return float64(controls.Get(id))
}

// wasmGetInputPointer returns the address JS writes interleaved input to.
func wasmGetInputPointer(this js.Value, args []js.Value) interface{} {
	if len(ioBuffer) == 0 {
		return 0
	}
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

// wasmProcessBlock(numFrames) runs the buffer through the reverb in place
// and returns its address.
func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || engine == nil {
		return 0
	}
	numFrames := args[0].Int()
	if numFrames > maxFrames {
		numFrames = maxFrames
	}
	if numFrames <= 0 {
		return 0
	}

	controller.Update()
	engine.ProcessInterleaved(ioBuffer[:numFrames*2], 2)

	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

func wasmReset(this js.Value, args []js.Value) interface{} {
	if engine != nil {
		engine.Reset()
	}
	return nil
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
