package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps the WGSL attribute types a generated variant can declare to vertex formats
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(2) @binding(0) var<uniform> material: MaterialParams;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflectSource extracts bind group layouts, vertex buffer layouts and entry points from WGSL source.
//
// Parameters:
//   - source: the WGSL source
//   - visibility: the stage visibility applied to every bind group layout entry
//
// Returns:
//   - reflection: the extracted metadata
func reflectSource(source string, visibility wgpu.ShaderStage) reflection {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	r := reflection{
		varNames:    make(map[int]map[int]string),
		entryPoints: make(map[ShaderType]string),
	}
	r.bindGroups = parseBindGroupLayouts(cleaned, structs, visibility, r.varNames)
	r.vertexLayouts = parseVertexLayouts(structs)
	for shaderType, re := range map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   vertexEntryRegex,
		ShaderTypeFragment: fragmentEntryRegex,
	} {
		if match := re.FindStringSubmatch(cleaned); match != nil {
			r.entryPoints[shaderType] = match[1]
		}
	}
	return r
}

// parseVertexLayouts converts the vertex input struct into one buffer layout per attribute.
// Each attribute reads from its own buffer at offset 0, so slot i of the pipeline is the i-th
// attribute in location order. ArrayStride is the tight attribute size; callers replace it with
// the accessor stride.
//
// Parameters:
//   - structs: parsed struct blocks
//
// Returns:
//   - []wgpu.VertexBufferLayout: layouts in ascending location order, nil if no vertex input struct exists
func parseVertexLayouts(structs []parsedStruct) []wgpu.VertexBufferLayout {
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}

		fields := make([]parsedField, 0, len(ps.fields))
		for _, f := range ps.fields {
			if _, ok := wgslVertexFormatMap[f.typeName]; ok && f.location >= 0 {
				fields = append(fields, f)
			}
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].location < fields[j].location })

		layouts := make([]wgpu.VertexBufferLayout, len(fields))
		for i, f := range fields {
			info := wgslVertexFormatMap[f.typeName]
			layouts[i] = wgpu.VertexBufferLayout{
				ArrayStride: info.size,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{{
					Format:         info.format,
					Offset:         0,
					ShaderLocation: uint32(f.location),
				}},
			}
		}
		return layouts
	}
	return nil
}

// parseBindGroupLayouts extracts every @group(N) @binding(M) declaration as a layout entry.
// Buffer entries get MinBindingSize from the bound type's layout.
//
// Parameters:
//   - cleaned: WGSL source with comments stripped
//   - structs: parsed struct blocks of the same source
//   - visibility: the stage visibility for every entry
//   - varNames: filled with the variable name per group and binding
//
// Returns:
//   - map[int][]wgpu.BindGroupLayoutEntry: entries keyed by group, sorted by binding
func parseBindGroupLayouts(cleaned string, structs []parsedStruct, visibility wgpu.ShaderStage, varNames map[int]map[int]string) map[int][]wgpu.BindGroupLayoutEntry {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	structSizes := computeStructSizes(structs)

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	for _, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
	}
	return groups
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses a struct body into fields with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field := parsedField{location: -1}
		field.isBuiltin = builtinRegex.MatchString(line)
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct returns true if the struct has at least one @location field and no @builtin
// fields, which separates the vertex input from the vertex output.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets,
// so types like array<T, N> stay whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
