package cli

import (
	"fmt"
	"strconv"

	"libretto/config"
	"libretto/models"
	"libretto/services/ai"
	"libretto/services/detail"
	"libretto/utils"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "libretto",
		Short: "Browsing and booking client for the AI-augmented library",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBooksCmd(),
		newBookCmd(),
		newAddBookCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newBookingsCmd(),
		newRecommendCmd(),
		newSummarizeCmd(),
		newDemoCmd(),
	)
	return root
}

func newBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books [query]",
		Short: "List or search the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			books, err := newGateway().ListBooks(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("No books found.")
				return nil
			}
			for _, b := range books {
				fmt.Printf("#%d  %s — %s  (%d/%d available)\n",
					b.ID, b.Title, b.Author, b.AvailableCopies, b.TotalCopies)
			}
			return nil
		},
	}
}

func newBookCmd() *cobra.Command {
	var doBook bool
	var doSummarize bool
	var userID int

	cmd := &cobra.Command{
		Use:   "book <id>",
		Short: "Show one book, optionally booking a copy or generating its AI summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return utils.NewValidationError("Book id must be numeric")
			}

			sess := newSession()
			o := detail.New(newGateway(), sess, id)
			defer o.Close()

			if err := o.Load(cmd.Context()); err != nil {
				return err
			}

			if doSummarize {
				done, err := o.GenerateSummary(cmd.Context())
				if err != nil {
					return err
				}
				<-done
				if snap := o.AI().Summarize(); snap.State == ai.StateError {
					fmt.Println("AI summary failed:", snap.Err)
				}
			}

			if doBook {
				var bk models.Booking
				var err error
				if userID > 0 {
					bk, err = o.BookCopyAs(cmd.Context(), userID)
				} else {
					bk, err = o.BookCopy(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Printf("Booked successfully (booking #%d, status %s).\n", bk.ID, bk.Status)
			}

			printDetail(o.Current())
			return nil
		},
	}
	cmd.Flags().BoolVar(&doBook, "book", false, "book a copy for the signed-in user")
	cmd.Flags().BoolVar(&doSummarize, "summarize", false, "generate the AI summary")
	cmd.Flags().IntVar(&userID, "user-id", 0, "book on behalf of this user id instead of the session")
	return cmd
}

func printDetail(v detail.View) {
	if v.State != detail.StateLoaded {
		fmt.Println(v.Err)
		return
	}
	b := v.Book
	fmt.Printf("%s\nby %s\n", b.Title, b.Author)
	if b.Genre != "" {
		fmt.Println("Genre:", b.Genre)
	}
	fmt.Printf("Available: %d/%d\n", b.AvailableCopies, b.TotalCopies)
	if b.Summary != "" {
		fmt.Println("\nSummary:", b.Summary)
	}
	if v.AISummary != "" {
		fmt.Println("\nAI summary:", v.AISummary)
	}
}

func newAddBookCmd() *cobra.Command {
	var in models.NewBook
	cmd := &cobra.Command{
		Use:   "add-book",
		Short: "Create a catalog entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newGateway().CreateBook(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Created book #%d: %s\n", b.ID, b.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "book title")
	cmd.Flags().StringVar(&in.Author, "author", "", "book author")
	cmd.Flags().StringVar(&in.Genre, "genre", "", "genre")
	cmd.Flags().StringVar(&in.Summary, "summary", "", "original summary")
	cmd.Flags().IntVar(&in.TotalCopies, "copies", 1, "total copies")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var in models.NewUser
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create an account and persist it as the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newGateway().CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := newSession().SetUser(user); err != nil {
				return err
			}
			fmt.Printf("Account created and logged in as %s (ID %d).\n", user.Name, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "account name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newSession().Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Run: func(cmd *cobra.Command, args []string) {
			if user, ok := newSession().Current(); ok {
				fmt.Printf("%s <%s> (ID %d)\n", user.Name, user.Email, user.ID)
				return
			}
			fmt.Println("Not logged in.")
		},
	}
}

func newBookingsCmd() *cobra.Command {
	var userID int
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List bookings for the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := userID
			if id == 0 {
				id, _ = newSession().CurrentUserID()
			}
			if id == 0 {
				return utils.NewValidationError("Please provide a user id or login")
			}
			bookings, err := newGateway().ListUserBookings(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Println("No bookings")
				return nil
			}
			for _, b := range bookings {
				fmt.Printf("Booking #%d  book %d  %s  %s\n",
					b.ID, b.BookID, b.Status, b.BookingDate.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user-id", 0, "user id (defaults to the session)")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <query>",
		Short: "Ask the AI for a book matching a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := ai.New(newGateway())
			done, err := ctl.StartRecommend(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			<-done
			snap := ctl.Recommend()
			switch snap.State {
			case ai.StateSuccess:
				if snap.Result.Found {
					fmt.Println("Recommended:", snap.Result.Title)
				} else {
					fmt.Println("Recommended: —")
				}
			case ai.StateError:
				fmt.Println(snap.Err)
			}
			return nil
		},
	}
}

func newSummarizeCmd() *cobra.Command {
	var text string
	var bookID int
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize raw text or a book's summary with the AI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := ai.New(newGateway())
			done, err := ctl.StartSummarize(cmd.Context(), models.SummarizeInput{Text: text, BookID: bookID})
			if err != nil {
				return err
			}
			<-done
			snap := ctl.Summarize()
			if snap.State == ai.StateError {
				fmt.Println(snap.Err)
				return nil
			}
			fmt.Println(snap.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "raw text to summarize")
	cmd.Flags().IntVar(&bookID, "book-id", 0, "book whose summary to summarize")
	return cmd
}
