package main

import (
	"net"
	"net/http"
	"time"

	"github.com/FAU-CDI/metaextract/internal/viewer"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr        = ":3000"
		open        bool
		debugListen string
	)

	cmd := &cobra.Command{
		Use:   "serve FOLDER",
		Short: "Serve the class model and metadata graphs of FOLDER",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			handler := &viewer.Viewer{Folder: args[0], Status: a.st}

			if debugListen != "" {
				go a.listenDebug(debugListen)
			}

			// listen first, so that requests made during loading are answered
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				a.st.LogFatal("listen", err, "addr", addr)
			}
			a.st.Log("listen", "addr", listener.Addr().String())

			go func() {
				if err := handler.Load(); err != nil {
					a.st.LogFatal("load", err, "folder", args[0])
				}
				if !open {
					return
				}
				url := "http://" + listener.Addr().String()
				if err := browser.OpenURL(url); err != nil {
					a.st.LogWarn("open browser", "url", url, "err", err)
				}
			}()

			server := http.Server{
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			a.st.LogFatal("serve", server.Serve(listener))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", addr, "address to listen on")
	flags.BoolVar(&open, "open", open, "open the viewer in a browser once loaded")
	flags.StringVar(&debugListen, "debug-listen", debugListen, "start a profiling server on the given address")
	return cmd
}
