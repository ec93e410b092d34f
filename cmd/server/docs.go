package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Traderboard API
// @version         0.1.0
// @description     Performance submission review pipeline and ranked leaderboard.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
