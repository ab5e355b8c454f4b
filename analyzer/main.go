package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.solver4all.com/azaryc2s/cvrp"
)

func main() {
	if len(os.Args) < 2 {
		log.Printf("No arguments passed!")
		return
	}
	dirName := os.Args[1]
	dir, err := os.ReadDir(dirName)
	if err != nil {
		log.Printf("Couldn't open directory %s: %s\n", dirName, err.Error())
		return
	}
	fmt.Printf("Name,Status,Optimal,Valid,Time,Obj,LBound,Gap,Dimension,Vehicles,Cuts,Nodes,Comment\n")
	for _, f := range dir {
		if !strings.EqualFold(filepath.Ext(f.Name()), ".json") {
			continue
		}
		inst, err := cvrp.LoadInstance(filepath.Join(dirName, f.Name()))
		if err != nil {
			log.Printf("Couldn't read %s: %s\n", f.Name(), err.Error())
			return
		}
		if inst.Solution == nil {
			fmt.Printf("No solution for %s\n", inst.Name)
			continue
		}
		sol := *inst.Solution
		solValid, validComment := cvrp.CheckSolutionValidity(inst, sol.Routes, sol.Obj)
		if !solValid {
			sol.Comment += validComment
		}
		gap := math.NaN()
		if sol.LBound > 0 {
			gap = math.Round((float64(sol.Obj-sol.LBound)/float64(sol.LBound))*1000) / 1000.0
		}
		fmt.Printf("%s,%s,%t,%t,%s,%d,%d,%.4f,%d,%d,%d,%d,%s\n", inst.Name, sol.Status, sol.Optimal, solValid, sol.Time, sol.Obj, sol.LBound, gap, inst.NodeCount, inst.VehicleCount, sol.Cuts, sol.Nodes, strings.ReplaceAll(sol.Comment, ",", ";"))
	}
}
