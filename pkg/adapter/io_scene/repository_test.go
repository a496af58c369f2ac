// 指示: miu200521358
package io_scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/avatar.yaml"

func mustFind(t *testing.T, doc *scene.Document, path string) scene.NodeID {
	t.Helper()
	id, ok := doc.Scene.FindByPath(path)
	require.True(t, ok, path)
	return id
}

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSceneRepository_CanLoadAndInferName(t *testing.T) {
	repo := NewSceneRepository()

	assert.True(t, repo.CanLoad("avatar.yaml"))
	assert.True(t, repo.CanLoad("AVATAR.YML"))
	assert.False(t, repo.CanLoad("avatar.vrm"))
	assert.Equal(t, "avatar", repo.InferName("/tmp/avatar.yaml"))
	assert.Equal(t, "avatar", repo.InferName("avatar"))
}

func TestSceneRepository_Load(t *testing.T) {
	repo := NewSceneRepository()
	events := make([]LoadProgressEventType, 0)
	repo.SetLoadProgressReporter(func(event LoadProgressEvent) {
		events = append(events, event.Type)
	})

	doc, err := repo.Load(fixturePath)

	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	assert.Equal(t, fixturePath, doc.Path)
	assert.Equal(t, 10, doc.Scene.NodeCount())
	assert.Equal(t, mustFind(t, doc, "Avatar"), doc.Avatar.Root)
	assert.Equal(t, mustFind(t, doc, "Avatar/Armature/Hips"), doc.Avatar.Hips())
	assert.Equal(t, mustFind(t, doc, "Avatar/Armature/Hips/Spine/Chest"), doc.Avatar.HumanBone(model.Chest))
	assert.True(t, doc.Scene.IsPackaged(mustFind(t, doc, "Avatar/Armature/Hips/Spine/Chest/Chest_costume")))
	assert.Equal(t, []LoadProgressEventType{
		LoadProgressEventTypeFileReadComplete,
		LoadProgressEventTypeYamlParsed,
		LoadProgressEventTypeCompleted,
	}, events)

	skirt, _ := doc.Scene.Node(mustFind(t, doc, "Avatar/Armature/Hips/Skirt"))
	expected := mmath.NewTransformAt(0, -0.05, 0)
	expected.Rotation = mmath.NewQuaternionFromDegrees(0, 90, 0)
	assert.True(t, skirt.Transform().NearEquals(expected, 1e-9))
	belt, _ := doc.Scene.Node(mustFind(t, doc, "Avatar/Armature/Hips/Skirt/Skirt_Belt"))
	assert.Equal(t, mmath.NewVec3(1, 2, 1), belt.Transform().Scale)
}

func TestSceneRepository_LoadComponents(t *testing.T) {
	doc, err := NewSceneRepository().Load(fixturePath)
	require.NoError(t, err)

	physBones := doc.Scene.PhysBonesInChildren(doc.Avatar.Root)
	require.Len(t, physBones, 1)
	settings := physBones[0].PhysBone
	assert.Equal(t, scene.PhysBoneTypeName, physBones[0].TypeName)
	assert.Equal(t, mustFind(t, doc, "Avatar/Armature/Hips/Skirt"), settings.Root)
	assert.Equal(t, []scene.NodeID{mustFind(t, doc, "Avatar/Armature/Hips/Skirt/Skirt_Belt")}, settings.Ignore)
	assert.Equal(t, model.MultiChildTypeAverage, settings.MultiChildType)
	assert.InDelta(t, 0.2, settings.Params.Pull, 1e-9)
	assert.Equal(t, "Angle", settings.Params.LimitType)
	assert.InDelta(t, 0.1, settings.Params.Extra["stretch"], 1e-9)

	colliders := doc.Scene.Components(mustFind(t, doc, "Avatar/Armature/Hips/Collider"))
	require.Len(t, colliders, 1)
	assert.Equal(t, scene.ComponentKindPhysBoneCollider, colliders[0].Kind)
	assert.Equal(t, []scene.ComponentID{colliders[0].ID()}, settings.Params.Colliders)

	meshes := doc.Scene.SkinnedMeshesInChildren(doc.Avatar.Root)
	require.Len(t, meshes, 1)
	mesh := meshes[0].SkinnedMesh
	assert.Equal(t, "Body", mesh.Name)
	assert.Equal(t, []scene.NodeID{
		mustFind(t, doc, "Avatar/Armature/Hips"),
		scene.NoNode,
		mustFind(t, doc, "Avatar/Armature/Hips/Spine/Chest/Chest_costume"),
	}, mesh.Bones)
	assert.Equal(t, doc.Avatar.Hips(), mesh.RootBone)
	assert.Len(t, mesh.Weights, 2)
	assert.Equal(t, map[int]struct{}{0: {}, 2: {}}, mesh.UsedBoneIndexes())
}

func TestSceneRepository_SaveRoundTrip(t *testing.T) {
	repo := NewSceneRepository()
	doc, err := repo.Load(fixturePath)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "nested", "out.yaml")

	require.NoError(t, repo.Save(out, doc, moutput.SaveOptions{}))
	reloaded, err := repo.Load(out)

	require.NoError(t, err)
	require.Equal(t, doc.Scene.NodeCount(), reloaded.Scene.NodeCount())
	for _, id := range doc.Scene.AllNodes() {
		path := doc.Scene.Path(id)
		other := mustFind(t, reloaded, path)
		original, _ := doc.Scene.Node(id)
		copied, _ := reloaded.Scene.Node(other)
		assert.True(t, original.Transform().NearEquals(copied.Transform(), 1e-9), path)
		assert.Equal(t, original.Packaged(), copied.Packaged(), path)
	}
	assert.Equal(t, reloaded.Scene.Path(reloaded.Avatar.HumanBone(model.Spine)), "Avatar/Armature/Hips/Spine")

	before := doc.Scene.PhysBonesInChildren(doc.Avatar.Root)[0].PhysBone
	after := reloaded.Scene.PhysBonesInChildren(reloaded.Avatar.Root)[0].PhysBone
	beforeFingerprint, err := before.SettingFingerprint()
	require.NoError(t, err)
	afterFingerprint, err := after.SettingFingerprint()
	require.NoError(t, err)
	assert.Equal(t, beforeFingerprint, afterFingerprint)
	assert.Equal(t, "Avatar/Armature/Hips/Skirt/Skirt_Belt", reloaded.Scene.Path(after.Ignore[0]))

	mesh := reloaded.Scene.SkinnedMeshesInChildren(reloaded.Avatar.Root)[0].SkinnedMesh
	assert.True(t, mesh.Bones[1].IsNone())
	assert.Equal(t, "Avatar/Armature/Hips/Spine/Chest/Chest_costume", reloaded.Scene.Path(mesh.Bones[2]))
}

func TestSceneRepository_SaveRespectsOverwrite(t *testing.T) {
	repo := NewSceneRepository()
	doc, err := repo.Load(fixturePath)
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, repo.Save(out, doc, moutput.SaveOptions{}))

	err = repo.Save(out, doc, moutput.SaveOptions{})
	require.Error(t, err)
	assert.Equal(t, merr.IoSaveFailedErrorID, merr.ExtractErrorID(err))

	assert.NoError(t, repo.Save(out, doc, moutput.SaveOptions{Overwrite: true}))
}

func TestSceneRepository_SaveRejectsDuplicatePaths(t *testing.T) {
	doc, err := scene.NewDocument("dup.yaml", "Avatar")
	require.NoError(t, err)
	for range 2 {
		_, err := doc.Scene.CreateNode("Twin", doc.Avatar.Root, mmath.NewTransform())
		require.NoError(t, err)
	}

	err = NewSceneRepository().Save(filepath.Join(t.TempDir(), "dup.yaml"), doc, moutput.SaveOptions{})

	require.Error(t, err)
	assert.Equal(t, merr.IoSaveFailedErrorID, merr.ExtractErrorID(err))
}

func TestSceneRepository_LoadErrors(t *testing.T) {
	repo := NewSceneRepository()
	tests := []struct {
		name string
		path func(t *testing.T) string
		id   string
	}{
		{"拡張子不正", func(t *testing.T) string { return "avatar.vrm" }, merr.IoExtInvalidErrorID},
		{"ファイルなし", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") }, merr.IoFileNotFoundErrorID},
		{"未知の項目", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n    color: red\n")
		}, merr.IoParseFailedErrorID},
		{"ノードなし", func(t *testing.T) string { return writeScene(t, "version: 1\n") }, merr.IoParseFailedErrorID},
		{"親が未定義", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n  - path: Avatar/Armature/Hips\n")
		}, merr.IoParseFailedErrorID},
		{"パス重複", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n  - path: /Avatar/\n")
		}, merr.IoParseFailedErrorID},
		{"標準ボーン名不正", func(t *testing.T) string {
			return writeScene(t, "avatar:\n  humanoid:\n    tail: Avatar\nnodes:\n  - path: Avatar\n")
		}, merr.IoParseFailedErrorID},
		{"参照先なし", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n    components:\n      - type: VRCPhysBone\n        phys_bone:\n          root: Avatar/Missing\n          params: {}\n")
		}, merr.IoParseFailedErrorID},
		{"ウェイト範囲外", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n    components:\n      - type: SkinnedMeshRenderer\n        skinned_mesh:\n          name: Body\n          bones: [Avatar]\n          weights:\n            - [{index: 1, weight: 1}]\n")
		}, merr.IoParseFailedErrorID},
		{"回転の二重指定", func(t *testing.T) string {
			return writeScene(t, "nodes:\n  - path: Avatar\n    rotation: [0, 0, 0, 1]\n    euler: [0, 0, 0]\n")
		}, merr.IoParseFailedErrorID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Load(tt.path(t))

			require.Error(t, err)
			assert.Equal(t, tt.id, merr.ExtractErrorID(err))
		})
	}
}

func TestSceneRepository_RootDefaultsToFirstNode(t *testing.T) {
	path := writeScene(t, "nodes:\n  - path: Root\n  - path: Root/Child\n")

	doc, err := NewSceneRepository().Load(path)

	require.NoError(t, err)
	assert.Equal(t, "Root", doc.Scene.Name(doc.Avatar.Root))
	assert.True(t, doc.Avatar.Hips().IsNone())
}
