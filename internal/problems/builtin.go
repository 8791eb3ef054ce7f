package problems

import "fmt"

// Workload script paths shared by the fault families.
const (
	workloadSocialNetwork = "socialNetwork/wrk2/scripts/social-network/compose-post.lua"
	workloadHotelRes      = "hotelReservation/wrk2/scripts/hotel-reservation/mixed-workload_type_1.lua"
	workloadAstronomy     = "OpenTelemetry Demo workload"
	workloadFlower        = "Flower FL workload"
)

// faultFamily captures everything shared by the task variants of one
// injected fault. The per-task expected solutions follow fixed shapes, so
// only the mitigation text needs spelling out.
type faultFamily struct {
	idBase             string
	idSuffix           string
	app                string
	namespace          string
	faultyService      string
	faultType          string
	faultDescription   string
	workload           string
	systemLevel        string
	faultCategory      string
	deployment         string
	mitigationSolution string
}

// expand produces one Problem per requested task, deriving IDs and expected
// solutions from the family.
func (f faultFamily) expand(tasks ...TaskType) []Problem {
	out := make([]Problem, 0, len(tasks))
	for _, task := range tasks {
		p := Problem{
			ID:               f.idBase + "-" + string(task) + f.idSuffix,
			Task:             task,
			App:              f.app,
			Namespace:        f.namespace,
			FaultyService:    f.faultyService,
			FaultType:        f.faultType,
			FaultDescription: f.faultDescription,
			Workload:         f.workload,
			SystemLevel:      f.systemLevel,
			FaultCategory:    f.faultCategory,
			Deployment:       f.deployment,
		}
		switch task {
		case TaskDetection:
			p.ExpectedSolution = "Yes"
		case TaskLocalization:
			p.ExpectedSolution = fmt.Sprintf("[%q]", f.faultyService)
		case TaskAnalysis:
			p.ExpectedSolution = fmt.Sprintf(`{"system_level": %q, "fault_type": %q}`, f.systemLevel, f.faultCategory)
		case TaskMitigation:
			p.ExpectedSolution = f.mitigationSolution
		}
		out = append(out, p)
	}
	return out
}


func builtinProblems() []Problem {
	var all []Problem
	app := func(fams []faultFamily, tasks ...TaskType) {
		for _, f := range fams {
			all = append(all, f.expand(tasks...)...)
		}
	}

	// K8s target port misconfiguration, three Social Network services.
	targetPort := func(suffix, service string) faultFamily {
		return faultFamily{
			idBase:             "k8s_target_port-misconfig",
			idSuffix:           suffix,
			app:                "Social Network",
			namespace:          "social-network",
			faultyService:      service,
			faultType:          "misconfig_k8s",
			faultDescription:   "K8s service target port misconfiguration",
			workload:           workloadSocialNetwork,
			systemLevel:        "Virtualization",
			faultCategory:      "Misconfiguration",
			mitigationSolution: "Reset target port to 9090, all pods Running",
		}
	}
	app([]faultFamily{
		targetPort("-1", "user-service"),
		targetPort("-2", "text-service"),
		targetPort("-3", "post-storage-service"),
	}, AllTaskTypes...)

	// Hotel Reservation MongoDB credential faults.
	mongoAuth := func(idBase, suffix, service, faultType, desc, mitigation string) faultFamily {
		return faultFamily{
			idBase:             idBase,
			idSuffix:           suffix,
			app:                "Hotel Reservation",
			namespace:          "hotel-reserv",
			faultyService:      service,
			faultType:          faultType,
			faultDescription:   desc,
			workload:           workloadHotelRes,
			systemLevel:        "Application",
			faultCategory:      "Authentication Issue",
			mitigationSolution: mitigation,
		}
	}
	app([]faultFamily{
		mongoAuth("auth_miss_mongodb", "-1", "mongodb-rate", "auth_missing",
			"MongoDB authentication credentials missing", "Restore MongoDB authentication, all pods Running"),
		mongoAuth("revoke_auth_mongodb", "-1", "mongodb-geo", "auth_revoke",
			"MongoDB authentication revoked", "Restore MongoDB authentication, all pods Running"),
		mongoAuth("revoke_auth_mongodb", "-2", "mongodb-rate", "auth_revoke",
			"MongoDB authentication revoked", "Restore MongoDB authentication, all pods Running"),
		mongoAuth("user_unregistered_mongodb", "-1", "mongodb-geo", "user_unregistered",
			"MongoDB user unregistered/deleted", "Re-register MongoDB user, all pods Running"),
		mongoAuth("user_unregistered_mongodb", "-2", "mongodb-rate", "user_unregistered",
			"MongoDB user unregistered/deleted", "Re-register MongoDB user, all pods Running"),
	}, AllTaskTypes...)

	// Hotel Reservation application misconfiguration.
	app([]faultFamily{{
		idBase:             "misconfig_app_hotel_res",
		idSuffix:           "-1",
		app:                "Hotel Reservation",
		namespace:          "hotel-reserv",
		faultyService:      "frontend",
		faultType:          "app_misconfig",
		faultDescription:   "Application misconfiguration in frontend",
		workload:           workloadHotelRes,
		systemLevel:        "Application",
		faultCategory:      "Misconfiguration",
		mitigationSolution: "Fix configuration, all pods Running",
	}}, AllTaskTypes...)

	// Social Network operation faults.
	app([]faultFamily{{
		idBase:             "scale_pod_zero_social_net",
		idSuffix:           "-1",
		app:                "Social Network",
		namespace:          "social-network",
		faultyService:      "compose-post-service",
		faultType:          "scale_pod_zero",
		faultDescription:   "Pod scaled to zero replicas",
		workload:           workloadSocialNetwork,
		systemLevel:        "Virtualization",
		faultCategory:      "Operation Error",
		mitigationSolution: "Scale pod back to 1+, all pods Running",
	}}, AllTaskTypes...)
	app([]faultFamily{{
		idBase:             "assign_to_non_existent_node_social_net",
		idSuffix:           "-1",
		app:                "Social Network",
		namespace:          "social-network",
		faultyService:      "compose-post-service",
		faultType:          "assign_non_existent_node",
		faultDescription:   "Pod assigned to non-existent node",
		workload:           workloadSocialNetwork,
		systemLevel:        "Virtualization",
		faultCategory:      "Misconfiguration",
		mitigationSolution: "Remove invalid node selector, all pods Running",
	}}, AllTaskTypes...)

	// Chaos Mesh faults against the Hotel Reservation user service. Only
	// detection and localization are defined for these.
	chaos := func(idBase, suffix, faultType, desc, level, category string) faultFamily {
		return faultFamily{
			idBase:           idBase,
			idSuffix:         suffix,
			app:              "Hotel Reservation",
			namespace:        "hotel-reserv",
			faultyService:    "user",
			faultType:        faultType,
			faultDescription: desc,
			workload:         workloadHotelRes,
			systemLevel:      level,
			faultCategory:    category,
		}
	}
	app([]faultFamily{
		chaos("container_kill", "", "container_kill", "Container killed via Chaos Mesh", "Virtualization", "Operation Error"),
		chaos("pod_failure_hotel_res", "-1", "pod_failure", "Pod failure injected via Chaos Mesh", "Virtualization", "Operation Error"),
		chaos("pod_kill_hotel_res", "-1", "pod_kill", "Pod killed via Chaos Mesh", "Virtualization", "Operation Error"),
		chaos("network_loss_hotel_res", "-1", "network_loss", "Network packet loss injected", "Operating System", "Network/Storage Issue"),
		chaos("network_delay_hotel_res", "-1", "network_delay", "Network delay/latency injected", "Operating System", "Network/Storage Issue"),
	}, TaskDetection, TaskLocalization)

	// No-op baselines: nothing is broken and the correct answer is "No".
	noop := func(id, appName, namespace, workload string) Problem {
		return Problem{
			ID:               id,
			Task:             TaskDetection,
			App:              appName,
			Namespace:        namespace,
			FaultyService:    "N/A",
			FaultType:        "noop",
			FaultDescription: "No fault injected (baseline test)",
			Workload:         workload,
			ExpectedSolution: "No",
			SystemLevel:      "N/A",
			FaultCategory:    "N/A",
		}
	}
	all = append(all,
		noop("noop_detection_hotel_reservation-1", "Hotel Reservation", "hotel-reserv", workloadHotelRes),
		noop("noop_detection_social_network-1", "Social Network", "social-network", workloadSocialNetwork),
		noop("noop_detection_astronomy_shop-1", "Astronomy Shop", "astronomy-shop", "N/A"),
	)

	// Astronomy Shop feature-flag faults (OpenTelemetry demo).
	astro := func(idBase, service, faultType, desc, category string) faultFamily {
		return faultFamily{
			idBase:           idBase,
			idSuffix:         "-1",
			app:              "Astronomy Shop",
			namespace:        "astronomy-shop",
			faultyService:    service,
			faultType:        faultType,
			faultDescription: desc,
			workload:         workloadAstronomy,
			systemLevel:      "Application",
			faultCategory:    category,
		}
	}
	app([]faultFamily{
		astro("astronomy_shop_ad_service_failure", "ad-service", "feature_flag_failure", "Ad service failure via feature flag", "Code Defect"),
		astro("astronomy_shop_ad_service_high_cpu", "ad-service", "high_cpu", "Ad service high CPU usage via feature flag", "Code Defect"),
		astro("astronomy_shop_ad_service_manual_gc", "ad-service", "manual_gc", "Ad service manual garbage collection issue", "Code Defect"),
		astro("astronomy_shop_cart_service_failure", "cart-service", "service_failure", "Cart service failure via feature flag", "Code Defect"),
		astro("astronomy_shop_image_slow_load", "image-provider", "slow_load", "Image provider slow loading", "Code Defect"),
		astro("astronomy_shop_loadgenerator_flood_homepage", "loadgenerator", "flood_homepage", "Load generator flooding homepage", "Operation Error"),
		astro("astronomy_shop_payment_service_failure", "payment-service", "service_failure", "Payment service failure via feature flag", "Code Defect"),
		astro("astronomy_shop_payment_service_unreachable", "payment-service", "unreachable", "Payment service unreachable", "Network/Storage Issue"),
		astro("astronomy_shop_product_catalog_service_failure", "product-catalog-service", "service_failure", "Product catalog service failure", "Code Defect"),
		astro("astronomy_shop_recommendation_service_cache_failure", "recommendation-service", "cache_failure", "Recommendation service cache failure", "Code Defect"),
	}, TaskDetection, TaskLocalization)

	kafka := astro("astronomy_shop_kafka_queue_problems", "kafka", "queue_problems", "Kafka queue processing issues", "Dependency Problem")
	kafka.mitigationSolution = "Fix Kafka queue, all pods Running"
	app([]faultFamily{kafka}, TaskDetection, TaskLocalization, TaskMitigation)

	// Redeploy without deleting the PersistentVolume. No localization task
	// is defined for this family.
	app([]faultFamily{{
		idBase:             "redeploy_without_PV",
		idSuffix:           "-1",
		app:                "Hotel Reservation",
		namespace:          "hotel-reserv",
		faultyService:      "mongodb",
		faultType:          "redeploy_without_pv",
		faultDescription:   "Namespace redeployed without deleting PersistentVolume",
		workload:           workloadHotelRes,
		systemLevel:        "Virtualization",
		faultCategory:      "Operation Error",
		mitigationSolution: "Delete old PV and recreate, all pods Running",
	}}, TaskDetection, TaskAnalysis, TaskMitigation)

	// Wrong binary in the container image.
	app([]faultFamily{{
		idBase:             "wrong_bin_usage",
		idSuffix:           "-1",
		app:                "General",
		namespace:          "default",
		faultyService:      "app",
		faultType:          "wrong_bin_usage",
		faultDescription:   "Wrong binary being used in container",
		workload:           "N/A",
		systemLevel:        "Application",
		faultCategory:      "Misconfiguration",
		mitigationSolution: "Fix binary path, all pods Running",
	}}, AllTaskTypes...)

	// Flower federated learning, the only Docker-based deployments.
	flower := func(idBase, service, faultType, desc, category string) faultFamily {
		return faultFamily{
			idBase:           idBase,
			app:              "Flower (FL)",
			namespace:        "docker",
			faultyService:    service,
			faultType:        faultType,
			faultDescription: desc,
			workload:         workloadFlower,
			systemLevel:      "Application",
			faultCategory:    category,
			deployment:       "docker",
		}
	}
	app([]faultFamily{
		flower("flower_node_stop", "node", "node_stop", "Federated learning node stopped", "Operation Error"),
		flower("flower_model_misconfig", "model", "model_misconfig", "Federated learning model misconfiguration", "Misconfiguration"),
	}, TaskDetection)

	return all
}
