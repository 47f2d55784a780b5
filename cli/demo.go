package cli

import (
	"fmt"
	"net/http/httptest"

	"libretto/internal/fakeserver"
	"libretto/models"
	"libretto/services/detail"
	"libretto/session"

	"github.com/spf13/cobra"
)

// newDemoCmd boots the in-process fake library API and runs the core
// workflows against it end to end: login, AI summary, booking, and the
// read-after-write refetch.
func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the booking and AI workflows against an in-process server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := fakeserver.New()
			srv.SeedBook(models.Book{
				Title:           "The Hound of the Baskervilles",
				Author:          "Arthur Conan Doyle",
				Genre:           "Mystery",
				Summary:         "A detective story set on the gloomy Devonshire moors.",
				TotalCopies:     3,
				AvailableCopies: 3,
			})

			ts := httptest.NewServer(srv.Engine)
			defer ts.Close()
			baseURLOverride = ts.URL
			defer func() { baseURLOverride = "" }()

			gw := newGateway()
			ctx := cmd.Context()

			user, err := gw.CreateUser(ctx, models.NewUser{Name: "Demo Reader", Email: "demo@example.com", Password: "secret"})
			if err != nil {
				return err
			}
			sess := session.NewStore(sessionFileForDemo())
			if err := sess.SetUser(user); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (ID %d)\n", user.Name, user.ID)

			o := detail.New(gw, sess, 1)
			defer o.Close()
			if err := o.Load(ctx); err != nil {
				return err
			}
			fmt.Printf("Loaded %q: %d/%d available\n",
				o.Current().Book.Title, o.Current().Book.AvailableCopies, o.Current().Book.TotalCopies)

			done, err := o.GenerateSummary(ctx)
			if err != nil {
				return err
			}
			<-done
			fmt.Println("AI summary:", o.Current().AISummary)

			bk, err := o.BookCopy(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Booked (booking #%d, status %s)\n", bk.ID, bk.Status)
			fmt.Printf("After refetch: %d/%d available\n",
				o.Current().Book.AvailableCopies, o.Current().Book.TotalCopies)
			return nil
		},
	}
}

func sessionFileForDemo() string {
	// Keep the demo session out of the real one.
	return ".libretto/demo-session.json"
}
