// Package `chatcli` implements command line client of chat relay server.
//
//	chatcli [-addr host:port] send -author ann hello everyone
//	echo "multi-line text" | chatcli send -author ann
//	chatcli fetch -since 10
//	chatcli watch -interval 2s
package main
