// 指示: miu200521358
package main

import (
	"fmt"
	"io"

	"github.com/miu200521358/mu_avatar_tinker/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/minteractor"
	"github.com/spf13/cobra"
)

// newClassifyCommand はボーン分類コマンドを生成する。
func newClassifyCommand(flags *globalFlags, out io.Writer, errOut io.Writer) *cobra.Command {
	var meshPath string
	cmd := &cobra.Command{
		Use:   "classify <scene.yaml>",
		Short: messages.HelpClassify,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			meshes, err := s.targetMeshes(meshPath)
			if err != nil {
				return err
			}
			for _, mesh := range meshes {
				set, err := s.uc.ClassifyBones(s.doc, mesh.ID())
				if err != nil {
					return err
				}
				s.printMappings(mesh, set)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&meshPath, "mesh", "m", "", messages.FlagMesh)
	return cmd
}

// newMergeCommand は冗長ボーン統合コマンドを生成する。
func newMergeCommand(flags *globalFlags, out io.Writer, errOut io.Writer) *cobra.Command {
	var meshPath string
	var excludes []string
	cmd := &cobra.Command{
		Use:   "merge <scene.yaml>",
		Short: messages.HelpMerge,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			excluded, err := s.findNodes(excludes)
			if err != nil {
				return err
			}
			meshes, err := s.targetMeshes(meshPath)
			if err != nil {
				return err
			}
			merged := 0
			rebound := 0
			for _, mesh := range meshes {
				// 先行メッシュの統合で付与先ごと消えたメッシュは対象外
				if _, ok := s.doc.Scene.Component(mesh.ID()); !ok {
					continue
				}
				set, err := s.uc.ClassifyBones(s.doc, mesh.ID())
				if err != nil {
					return err
				}
				for i := range set.Mappings {
					if _, skip := excluded[set.Mappings[i].Bone]; skip {
						set.Mappings[i].Selected = false
					}
				}
				result, err := s.uc.MergeRedundantBones(s.doc, set)
				if err != nil {
					return err
				}
				merged += result.Merged
				rebound += result.Rebound
			}
			fmt.Fprintf(out, messages.LogMergeSummary+"\n", merged, rebound)
			return s.save()
		},
	}
	cmd.Flags().StringVarP(&meshPath, "mesh", "m", "", messages.FlagMesh)
	cmd.Flags().StringSliceVarP(&excludes, "exclude", "x", nil, messages.FlagExclude)
	return cmd
}

// newPhysBoneCommand は揺れもの操作コマンド群を生成する。
func newPhysBoneCommand(flags *globalFlags, out io.Writer, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "physbone",
		Short: messages.HelpPhysBone,
	}
	cmd.PersistentFlags().BoolVar(&flags.noDummy, "no-dummy", false, messages.FlagNoDummy)

	collect := &cobra.Command{
		Use:   "collect <scene.yaml>",
		Short: messages.HelpPhysBoneCollect,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			collection, err := s.uc.CollectPhysBones(s.doc)
			if err != nil {
				return err
			}
			s.printPhysBones(collection)
			return nil
		},
	}

	var combineTarget string
	combine := &cobra.Command{
		Use:   "combine <scene.yaml>",
		Short: messages.HelpPhysBoneCombine,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhysBoneEdit(flags, args[0], combineTarget, out, errOut,
				func(s *session, info minteractor.PhysBoneInfo) (*minteractor.PhysBoneCollection, error) {
					return s.uc.CombinePhysBones(s.doc, info)
				})
		},
	}
	combine.Flags().StringVarP(&combineTarget, "target", "t", "", messages.FlagTarget)
	_ = combine.MarkFlagRequired("target")

	var splitTarget string
	split := &cobra.Command{
		Use:   "split <scene.yaml>",
		Short: messages.HelpPhysBoneSplit,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhysBoneEdit(flags, args[0], splitTarget, out, errOut,
				func(s *session, info minteractor.PhysBoneInfo) (*minteractor.PhysBoneCollection, error) {
					return s.uc.SplitPhysBones(s.doc, info)
				})
		},
	}
	split.Flags().StringVarP(&splitTarget, "target", "t", "", messages.FlagTarget)
	_ = split.MarkFlagRequired("target")

	var moveTarget string
	var destinationName string
	move := &cobra.Command{
		Use:   "move <scene.yaml>",
		Short: messages.HelpPhysBoneMove,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var destination *model.PhysBoneDestination
			if destinationName != "" {
				parsed, err := model.ParsePhysBoneDestination(destinationName)
				if err != nil {
					return err
				}
				destination = &parsed
			}
			return runPhysBoneEdit(flags, args[0], moveTarget, out, errOut,
				func(s *session, info minteractor.PhysBoneInfo) (*minteractor.PhysBoneCollection, error) {
					target := s.uc.PhysBoneOptions().Destination
					if destination != nil {
						target = *destination
					}
					fmt.Fprintf(out, messages.LogMoveSummary+"\n", target)
					return s.uc.MovePhysBone(s.doc, info, target)
				})
		},
	}
	move.Flags().StringVarP(&moveTarget, "target", "t", "", messages.FlagTarget)
	move.Flags().StringVarP(&destinationName, "destination", "d", "", messages.FlagDestination)
	_ = move.MarkFlagRequired("target")

	combineAll := &cobra.Command{
		Use:   "combine-all <scene.yaml>",
		Short: messages.HelpPhysBoneCombineAll,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			collection, count, err := s.uc.CombineAllPhysBones(s.doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, messages.LogCombineSummary+"\n", count)
			s.printPhysBones(collection)
			return s.save()
		},
	}

	splitAll := &cobra.Command{
		Use:   "split-all <scene.yaml>",
		Short: messages.HelpPhysBoneSplitAll,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			collection, count, err := s.uc.SplitAllPhysBones(s.doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, messages.LogSplitSummary+"\n", count)
			s.printPhysBones(collection)
			return s.save()
		},
	}

	cmd.AddCommand(collect, combine, split, move, combineAll, splitAll)
	return cmd
}

// runPhysBoneEdit は付与先パスで揺れものを特定し、編集して保存する。
func runPhysBoneEdit(
	flags *globalFlags,
	inputPath string,
	targetPath string,
	out io.Writer,
	errOut io.Writer,
	edit func(s *session, info minteractor.PhysBoneInfo) (*minteractor.PhysBoneCollection, error),
) error {
	s, err := openSession(flags, inputPath, out, errOut)
	if err != nil {
		return err
	}
	collection, err := s.uc.CollectPhysBones(s.doc)
	if err != nil {
		return err
	}
	info, err := s.findPhysBoneInfo(collection, targetPath)
	if err != nil {
		return err
	}
	updated, err := edit(s, info)
	if err != nil {
		return err
	}
	s.printPhysBones(updated)
	return s.save()
}

// newUnusedCommand は未使用ボーン操作コマンド群を生成する。
func newUnusedCommand(flags *globalFlags, out io.Writer, errOut io.Writer) *cobra.Command {
	var rootPath string
	var meshOnly bool
	var excludes []string
	cmd := &cobra.Command{
		Use:   "unused",
		Short: messages.HelpUnused,
	}
	cmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", messages.FlagRoot)
	cmd.PersistentFlags().BoolVar(&meshOnly, "mesh-only", false, messages.FlagMeshOnly)

	find := &cobra.Command{
		Use:   "find <scene.yaml>",
		Short: messages.HelpUnusedFind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			set, err := s.findUnused(rootPath, meshOnly)
			if err != nil {
				return err
			}
			s.printUnused(set)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <scene.yaml>",
		Short: messages.HelpUnusedDelete,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(flags, args[0], out, errOut)
			if err != nil {
				return err
			}
			set, err := s.findUnused(rootPath, meshOnly)
			if err != nil {
				return err
			}
			excluded, err := s.findNodes(excludes)
			if err != nil {
				return err
			}
			set.Bones = s.withoutExcluded(set.Bones, excluded)
			deleted, err := s.uc.DeleteUnusedBones(s.doc, set)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, messages.LogUnusedDeleted+"\n", deleted)
			return s.save()
		},
	}
	remove.Flags().StringSliceVarP(&excludes, "exclude", "x", nil, messages.FlagExclude)

	cmd.AddCommand(find, remove)
	return cmd
}

// targetMeshes は対象スキンメッシュを返す。パス未指定時はアバター配下の全メッシュを返す。
func (s *session) targetMeshes(meshPath string) ([]*scene.Component, error) {
	if meshPath != "" {
		mesh, err := s.findSkinnedMesh(meshPath)
		if err != nil {
			return nil, err
		}
		return []*scene.Component{mesh}, nil
	}
	meshes := s.doc.Scene.SkinnedMeshesInChildren(s.doc.Avatar.Root)
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%s", messages.MessageNothingToDo)
	}
	return meshes, nil
}

// findNodes はパス一覧をノード集合へ解決する。
func (s *session) findNodes(paths []string) (map[scene.NodeID]struct{}, error) {
	nodes := make(map[scene.NodeID]struct{}, len(paths))
	for _, path := range paths {
		id, err := s.findNode(path)
		if err != nil {
			return nil, err
		}
		nodes[id] = struct{}{}
	}
	return nodes, nil
}

// findPhysBoneInfo は付与先パスに一致する最初の揺れもの推定結果を返す。
func (s *session) findPhysBoneInfo(
	collection *minteractor.PhysBoneCollection,
	targetPath string,
) (minteractor.PhysBoneInfo, error) {
	owner, err := s.findNode(targetPath)
	if err != nil {
		return minteractor.PhysBoneInfo{}, err
	}
	for _, info := range collection.Infos {
		component, ok := s.doc.Scene.Component(info.Target)
		if ok && component.Owner() == owner {
			return info, nil
		}
	}
	return minteractor.PhysBoneInfo{}, fmt.Errorf(messages.MessageTargetNotFound, targetPath)
}

// findUnused は未使用ボーンを検出する。
func (s *session) findUnused(rootPath string, meshOnly bool) (*minteractor.UnusedBoneSet, error) {
	if meshOnly {
		return s.uc.FindUnusedSkinnedMeshBones(s.doc)
	}
	root := scene.NoNode
	if rootPath != "" {
		id, err := s.findNode(rootPath)
		if err != nil {
			return nil, err
		}
		root = id
	}
	return s.uc.FindUnusedBones(s.doc, root)
}

// withoutExcluded は除外ノードとその祖先を削除候補から外す。
func (s *session) withoutExcluded(bones []scene.NodeID, excluded map[scene.NodeID]struct{}) []scene.NodeID {
	if len(excluded) == 0 {
		return bones
	}
	kept := make([]scene.NodeID, 0, len(bones))
	for _, bone := range bones {
		protected := false
		for id := range excluded {
			if s.doc.Scene.IsDescendantOrSelf(bone, id) {
				protected = true
				break
			}
		}
		if !protected {
			kept = append(kept, bone)
		}
	}
	return kept
}

func (s *session) printMappings(mesh *scene.Component, set *minteractor.BoneMappingSet) {
	fmt.Fprintf(s.out, "mesh=%s (%s)\n", s.path(mesh.Owner()), mesh.SkinnedMesh.Name)
	for _, mapping := range set.Mappings {
		fmt.Fprintf(s.out, "  %s -> %s [%s]\n",
			s.path(mapping.Bone), s.path(mapping.BaseBone), messages.BoneRelationLabel(mapping.Relation))
	}
}

func (s *session) printPhysBones(collection *minteractor.PhysBoneCollection) {
	for _, info := range collection.Infos {
		owner := scene.NoNode
		if component, ok := s.doc.Scene.Component(info.Target); ok {
			owner = component.Owner()
		}
		suspect := ""
		if info.SuspectAutoConverted {
			suspect = " *"
		}
		fmt.Fprintf(s.out, "%s [%s] parent=%s children=%d%s\n",
			s.path(owner), messages.PhysBoneRoleLabel(info.Role), s.path(info.ParentBone), len(info.ChildBones), suspect)
	}
}

func (s *session) printUnused(set *minteractor.UnusedBoneSet) {
	fmt.Fprintf(s.out, messages.LogUnusedSummary+"\n", len(set.Bones))
	for _, bone := range set.Bones {
		fmt.Fprintf(s.out, "  %s\n", s.path(bone))
	}
}
