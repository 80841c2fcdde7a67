package renderer

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

//go:embed shaders/*.fs
var shaderFS embed.FS

// Shader program names. Each maps to <name>.fs.
const (
	programStep   = "step"
	programPaint  = "paint"
	programRender = "render"
)

// programUniforms lists the uniforms each program must expose.
var programUniforms = map[string][]string{
	programStep: {
		"field", "gridSize", "feedRate", "killRate", "diffuseU", "diffuseV",
		"deltaTime", "noiseStrength", "kernel", "boundary", "mapMode", "stepIndex",
	},
	programPaint: {"field", "center", "radius"},
	programRender: {
		"field", "gridSize", "surfaceSize", "palette", "emboss", "boundary",
		"zoom", "pan", "stopPos", "stopColor", "stopCount",
	},
}

// shaderSource returns the fragment source for a program. Files in dir take
// precedence over the embedded copies so kernels can be edited without a rebuild.
func shaderSource(dir, name string) (string, error) {
	file := name + ".fs"
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading shader %s: %w", file, err)
		}
	}
	data, err := shaderFS.ReadFile("shaders/" + file)
	if err != nil {
		return "", fmt.Errorf("embedded shader %s: %w", file, err)
	}
	return string(data), nil
}

// program is a compiled fragment shader with its uniform locations.
type program struct {
	name   string
	shader rl.Shader
	locs   map[string]int32
}

func loadProgram(dir, name string) (*program, error) {
	src, err := shaderSource(dir, name)
	if err != nil {
		return nil, err
	}

	shader := rl.LoadShaderFromMemory("", src)
	if !rl.IsShaderValid(shader) {
		return nil, fmt.Errorf("compiling shader %s failed", name)
	}

	p := &program{name: name, shader: shader, locs: make(map[string]int32)}
	for _, u := range programUniforms[name] {
		p.locs[u] = rl.GetShaderLocation(shader, u)
	}
	return p, nil
}

func (p *program) setFloat(name string, v float32) {
	rl.SetShaderValue(p.shader, p.locs[name], []float32{v}, rl.ShaderUniformFloat)
}

func (p *program) setVec2(name string, x, y float32) {
	rl.SetShaderValue(p.shader, p.locs[name], []float32{x, y}, rl.ShaderUniformVec2)
}

// setTexture binds a sampler. Must be called inside BeginShaderMode.
func (p *program) setTexture(name string, tex rl.Texture2D) {
	rl.SetShaderValueTexture(p.shader, p.locs[name], tex)
}

func (p *program) unload() {
	rl.UnloadShader(p.shader)
}
