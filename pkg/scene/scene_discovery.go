package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scene types
const (
	TypeBuiltIn = "builtin"
	TypeFile    = "file"
)

// ErrUnknownScene is returned when a scene ID matches neither a built-in scene nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the JSON file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

const builtInGroup = "Built-in Scenes"

type builtIn struct {
	info   SceneInfo
	create func(seed int64) (*Scene, error)
}

var builtIns = []builtIn{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Diffuse, hollow glass and mirror spheres on a brown ground",
		},
		create: func(int64) (*Scene, error) { return NewDefaultScene() },
	},
	{
		info: SceneInfo{
			ID:          "random",
			Name:        "Random Spheres",
			Description: "Hundreds of small random spheres around three large ones",
		},
		create: NewRandomScene,
	},
	{
		info: SceneInfo{
			ID:          "dark-sphere",
			Name:        "Dark Sphere",
			Description: "A single black sphere against the sky",
		},
		create: func(int64) (*Scene, error) { return NewDarkSphereScene() },
	},
	{
		info: SceneInfo{
			ID:          "ring",
			Name:        "Sphere Ring",
			Description: "Glass and mirror spheres inside a ring of colored spheres",
		},
		create: func(int64) (*Scene, error) { return NewRingScene() },
	},
}

// BuiltInScenes returns the scenes that are constructed in code
func BuiltInScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtIns))
	for _, b := range builtIns {
		info := b.info
		info.Group = builtInGroup
		info.Type = TypeBuiltIn
		scenes = append(scenes, info)
	}
	return scenes
}

// CreateScene creates a built-in scene by ID, or loads the scene file when
// the ID names a .json file. The seed only affects randomly generated scenes.
func CreateScene(id string, seed int64) (*Scene, error) {
	for _, b := range builtIns {
		if b.info.ID == id {
			return b.create(seed)
		}
	}
	if strings.EqualFold(filepath.Ext(id), ".json") {
		return NewFileScene(id)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// ListFileScenes scans dir for JSON scene files. A missing directory yields an empty list.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseSceneMetadata(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata for %s: %w", filePath, err)
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name and description of a JSON scene file
// without validating the rest of it. The name falls back to the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Group:    "Scene Files",
		Type:     TypeFile,
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return sceneInfo, err
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return sceneInfo, err
	}

	if header.Name != "" {
		sceneInfo.Name = header.Name
	}
	sceneInfo.Description = header.Description

	return sceneInfo, nil
}

// ListAllScenes returns built-in scenes and the scene files in dir, grouped by
// category with the built-in group first and the rest alphabetical
func ListAllScenes(dir string) ([]SceneGroup, error) {
	fileScenes, err := ListFileScenes(dir)
	if err != nil {
		return nil, err
	}

	allScenes := append(BuiltInScenes(), fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	groups := []SceneGroup{{Name: builtInGroup, Scenes: groupMap[builtInGroup]}}
	for _, groupName := range groupNames {
		groups = append(groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return groups, nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
