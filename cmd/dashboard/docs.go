package main

//go:generate swag init -g cmd/dashboard/main.go -o docs

// @title           DDream Dashboard API
// @version         0.1.0
// @description     Game registry, dashboard views, staking, and trading over a CosmWasm deployment.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
