package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/access"
	"inkwell/internal/blog"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Read and manage blog posts",
}

func init() {
	postCmd.AddCommand(postListCmd, postGetCmd, postCreateCmd, postEditCmd, postDeleteCmd)

	postCreateCmd.Flags().String("title", "", "post title")
	postCreateCmd.Flags().String("content", "", "post content")
	_ = postCreateCmd.MarkFlagRequired("title")
	_ = postCreateCmd.MarkFlagRequired("content")

	postEditCmd.Flags().String("title", "", "new title")
	postEditCmd.Flags().String("content", "", "new content")
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		// Listing is public; restore anyway so ownership markers can render.
		if err := restoreSession(cmd.Context(), a); err != nil {
			return err
		}
		posts, err := a.blog.ListPosts(cmd.Context())
		if err != nil {
			return err
		}
		identity := a.sessions.Snapshot().Identity
		for _, p := range posts {
			marker := ""
			if access.CanModify(identity, p.OwnerID) {
				marker = "  *"
			}
			fmt.Printf("%s  %s  by %s%s\n", p.ID, p.Title, p.AuthorEmail, marker)
		}
		return nil
	},
}

var postGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		post, err := a.blog.GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printPost(post)
		return nil
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := ensureAuthenticated(cmd.Context(), a); err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")

		post, err := a.blog.CreatePost(cmd.Context(), title, content)
		if err != nil {
			return err
		}
		fmt.Printf("Created post %s\n", post.ID)
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a post you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := ensureAuthenticated(cmd.Context(), a); err != nil {
			return err
		}
		if err := requireOwnership(cmd, a, args[0]); err != nil {
			return err
		}

		var update blog.PostUpdate
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			update.Title = &title
		}
		if cmd.Flags().Changed("content") {
			content, _ := cmd.Flags().GetString("content")
			update.Content = &content
		}
		if update.Title == nil && update.Content == nil {
			return errors.New("nothing to update; pass --title or --content")
		}

		post, err := a.blog.UpdatePost(cmd.Context(), args[0], update)
		if err != nil {
			return err
		}
		fmt.Printf("Updated post %s\n", post.ID)
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := ensureAuthenticated(cmd.Context(), a); err != nil {
			return err
		}
		if err := requireOwnership(cmd, a, args[0]); err != nil {
			return err
		}

		if err := a.blog.DeletePost(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted post %s\n", args[0])
		return nil
	},
}

// requireOwnership checks the ownership affordance client-side before
// attempting a mutation. The server enforces the same rule authoritatively.
func requireOwnership(cmd *cobra.Command, a *app, postID string) error {
	post, err := a.blog.GetPost(cmd.Context(), postID)
	if err != nil {
		return err
	}
	if !access.CanModify(a.sessions.Snapshot().Identity, post.OwnerID) {
		return errors.New("you can only modify your own posts")
	}
	return nil
}

func printPost(p blog.Post) {
	fmt.Printf("%s\n", p.Title)
	fmt.Printf("by %s on %s\n\n", p.AuthorEmail, p.PublicationDate.Format("2006-01-02 15:04"))
	fmt.Println(p.Content)
}
